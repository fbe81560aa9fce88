package http

import (
	"net/http"

	"github.com/work4inventions/financeInsight/internal/auth"
	"github.com/work4inventions/financeInsight/internal/log"
)

const maxAvatarBytes = 5 << 20

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	snap, err := s.snapshotFor(r, id.UserID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Profile refresh failed",
			log.FieldUserID, id.UserID, log.FieldError, err)
	}

	avatarURL, aerr := s.profiles.AvatarURL(r.Context(), id.UserID)
	if aerr != nil {
		s.logger.ErrorContext(r.Context(), "Avatar lookup failed",
			log.FieldUserID, id.UserID, log.FieldError, aerr)
	}

	data := struct {
		Name       string
		Email      string
		AvatarURL  string
		Balance    balanceView
		FetchError bool
	}{
		Name:       id.DisplayName,
		Email:      id.Email,
		AvatarURL:  avatarURL,
		Balance:    newBalanceView(snap),
		FetchError: err != nil,
	}
	s.render(w, r, "profile.html", data)
}

// handleAvatarUpload stores the uploaded image and persists its URL on the
// user's profile.
func (s *Server) handleAvatarUpload(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing avatar file")
		return
	}
	defer file.Close()

	url, err := s.blobs.Put(r.Context(), id.UserID, header.Filename, file)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Avatar store failed",
			log.FieldUserID, id.UserID, log.FieldError, err)
		writeError(w, http.StatusUnprocessableEntity, "Could not store the image")
		return
	}

	if err := s.profiles.SetAvatarURL(r.Context(), id.UserID, url); err != nil {
		s.logger.ErrorContext(r.Context(), "Avatar URL persist failed",
			log.FieldUserID, id.UserID, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Could not save the avatar")
		return
	}

	s.logger.InfoContext(r.Context(), "Avatar updated", log.FieldUserID, id.UserID)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}
