package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldUserID          = "user_id"
	FieldTransactionID   = "transaction_id"
	FieldTransactionType = "transaction_type"
	FieldName            = "name"
	FieldAmountCents     = "amount_cents"
	FieldTag             = "tag"
	FieldDate            = "date"
	FieldBackend         = "backend"
	FieldDBPath          = "db_path"
	FieldDynamoTable     = "dynamo_table"
	FieldDynamoRegion    = "dynamo_region"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStore   = "store"
	ComponentActions = "actions"
	ComponentGateway = "gateway"
	ComponentBackend = "backend"
	ComponentAuth    = "auth"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
	ComponentBlob    = "blob"
	ComponentCharts  = "charts"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpRefresh  = "refresh"
	OpRender   = "render"
	OpSignIn   = "sign_in"
	OpSignOut  = "sign_out"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
