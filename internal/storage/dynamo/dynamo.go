// Package dynamo is the DynamoDB-backed collection gateway. The table uses
// userId as partition key and id as sort key, so every read and write is
// scoped to one user's partition.
package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/work4inventions/financeInsight/internal/core"
	"github.com/work4inventions/financeInsight/internal/gateway"
)

type Config struct {
	Region    string
	TableName string
	// Endpoint overrides the AWS endpoint, used for DynamoDB Local.
	Endpoint string
}

type Store struct {
	client *dynamodb.Client
	table  string
}

// record is the wire shape of one item. Amounts travel as integer cents.
type record struct {
	UserID      string `dynamodbav:"userId"`
	ID          string `dynamodbav:"id"`
	Type        string `dynamodbav:"txType"`
	Name        string `dynamodbav:"name"`
	AmountCents int64  `dynamodbav:"amountCents"`
	Date        string `dynamodbav:"date"`
	Tag         string `dynamodbav:"tag"`
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var clientOpts []func(*dynamodb.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return &Store{
		client: dynamodb.NewFromConfig(awsCfg, clientOpts...),
		table:  cfg.TableName,
	}, nil
}

// ListAll implements gateway.Lister via a Query on the user's partition.
func (s *Store) ListAll(ctx context.Context, userID string) ([]core.Transaction, error) {
	var out []core.Transaction

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("userId = :uid"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":uid": &ddbtypes.AttributeValueMemberS{Value: userID},
		},
	}

	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query transactions: %w", err)
		}
		for _, item := range page.Items {
			var rec record
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, &gateway.DecodeError{Field: "item", Cause: err}
			}
			if rec.ID == profileSortKey {
				continue
			}
			t, err := decodeRecord(rec)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
	}
	return out, nil
}

// Create implements gateway.Creator.
func (s *Store) Create(ctx context.Context, userID string, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}

	rec := record{
		UserID:      userID,
		ID:          uuid.NewString(),
		Type:        string(t.Type),
		Name:        t.Name,
		AmountCents: t.Amount.Cents,
		Date:        t.Date.ISO(),
		Tag:         t.Tag,
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return "", fmt.Errorf("marshal transaction: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return "", fmt.Errorf("put transaction: %w", err)
	}
	return rec.ID, nil
}

// Update implements gateway.Updater. The condition expression makes an update
// of a missing item fail instead of upserting one.
func (s *Store) Update(ctx context.Context, userID, id string, fields core.UpdateFields) error {
	if err := fields.Validate(); err != nil {
		return err
	}

	expr := ""
	values := map[string]ddbtypes.AttributeValue{}
	names := map[string]string{}
	if fields.Name != nil {
		expr = "SET #n = :name"
		names["#n"] = "name"
		values[":name"] = &ddbtypes.AttributeValueMemberS{Value: *fields.Name}
	}
	if fields.Amount != nil {
		if expr == "" {
			expr = "SET amountCents = :cents"
		} else {
			expr += ", amountCents = :cents"
		}
		values[":cents"] = &ddbtypes.AttributeValueMemberN{
			Value: fmt.Sprintf("%d", fields.Amount.Cents),
		}
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       key(userID, id),
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: values,
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}

	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		var cond *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return gateway.ErrNotFound
		}
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

// Delete implements gateway.Deleter.
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.table),
		Key:                 key(userID, id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		var cond *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return gateway.ErrNotFound
		}
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// SetAvatarURL implements gateway.ProfileStore. Profiles share the table
// under a fixed sort key.
func (s *Store) SetAvatarURL(ctx context.Context, userID, url string) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]ddbtypes.AttributeValue{
			"userId":    &ddbtypes.AttributeValueMemberS{Value: userID},
			"id":        &ddbtypes.AttributeValueMemberS{Value: profileSortKey},
			"avatarUrl": &ddbtypes.AttributeValueMemberS{Value: url},
		},
	})
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}

// AvatarURL implements gateway.ProfileStore. A missing item means no avatar.
func (s *Store) AvatarURL(ctx context.Context, userID string) (string, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       key(userID, profileSortKey),
	})
	if err != nil {
		return "", fmt.Errorf("get profile: %w", err)
	}
	if out.Item == nil {
		return "", nil
	}
	var p struct {
		AvatarURL string `dynamodbav:"avatarUrl"`
	}
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return "", fmt.Errorf("unmarshal profile: %w", err)
	}
	return p.AvatarURL, nil
}

// profileSortKey cannot collide with transaction ids, which are UUIDs.
const profileSortKey = "profile"

func key(userID, id string) map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		"userId": &ddbtypes.AttributeValueMemberS{Value: userID},
		"id":     &ddbtypes.AttributeValueMemberS{Value: id},
	}
}

func decodeRecord(rec record) (core.Transaction, error) {
	tt := core.TransactionType(rec.Type)
	if !tt.IsValid() {
		return core.Transaction{}, &gateway.DecodeError{ID: rec.ID, Field: "txType", Cause: core.ErrInvalidType}
	}
	d, err := core.ParseDate(rec.Date)
	if err != nil {
		return core.Transaction{}, &gateway.DecodeError{ID: rec.ID, Field: "date", Cause: err}
	}
	if rec.AmountCents <= 0 {
		return core.Transaction{}, &gateway.DecodeError{ID: rec.ID, Field: "amountCents", Cause: core.ErrInvalidAmount}
	}
	return core.Transaction{
		ID:     rec.ID,
		Type:   tt,
		Name:   rec.Name,
		Amount: core.Money{Cents: rec.AmountCents},
		Date:   d,
		Tag:    rec.Tag,
	}, nil
}
