package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-care-nosql/internal/config"
	"github.com/go-care-nosql/internal/domain"
)

const (
	condEmailAbsent = "attribute_not_exists(email)"
	condEmailExists = "attribute_exists(email)"
)

// AccountRepo stores patient and doctor accounts, one table per collection,
// keyed by email.
type AccountRepo struct {
	client *dynamodb.Client
	tables map[domain.Collection]string
}

func NewAccountRepo(client *dynamodb.Client, tables config.DynamoTables) *AccountRepo {
	return &AccountRepo{client: client, tables: accountTables(tables)}
}

func (r *AccountRepo) table(coll domain.Collection) (string, error) {
	name, ok := r.tables[coll]
	if !ok {
		return "", fmt.Errorf("unknown collection %q", coll)
	}
	return name, nil
}

// Create inserts the account only if no record with the same email exists.
func (r *AccountRepo) Create(ctx context.Context, coll domain.Collection, a *domain.Account) error {
	table, err := r.table(coll)
	if err != nil {
		return err
	}
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(table),
		Item:                item,
		ConditionExpression: aws.String(condEmailAbsent),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("account %s: %w", a.Email, domain.ErrConflict)
	}
	return err
}

func (r *AccountRepo) GetByEmail(ctx context.Context, coll domain.Collection, email string) (*domain.Account, error) {
	table, err := r.table(coll)
	if err != nil {
		return nil, err
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            strKey(fieldEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("account %s: %w", email, domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, fmt.Errorf("unmarshal account: %w", err)
	}
	return &a, nil
}

func (r *AccountRepo) SetOTP(ctx context.Context, coll domain.Collection, email, code string, expiresAt time.Time) error {
	return r.update(ctx, coll, email, map[string]interface{}{
		fieldOTP:       code,
		fieldOTPExpiry: expiresAt,
	})
}

func (r *AccountRepo) MarkVerified(ctx context.Context, coll domain.Collection, email string) error {
	return r.update(ctx, coll, email, map[string]interface{}{
		fieldVerified:  true,
		fieldOTP:       nil,
		fieldOTPExpiry: nil,
	})
}

func (r *AccountRepo) UpdateProfile(ctx context.Context, coll domain.Collection, email string, p domain.ProfileUpdate) error {
	if p.Empty() {
		return fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	return r.update(ctx, coll, email, p.Fields())
}

func (r *AccountRepo) Delete(ctx context.Context, coll domain.Collection, email string) error {
	table, err := r.table(coll)
	if err != nil {
		return err
	}
	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key:       strKey(fieldEmail, email),
	})
	return err
}

// Promote writes a into the target collection and removes it from the source
// collection in one transaction. Either both happen or neither does.
func (r *AccountRepo) Promote(ctx context.Context, from, to domain.Collection, a *domain.Account) error {
	src, err := r.table(from)
	if err != nil {
		return err
	}
	dst, err := r.table(to)
	if err != nil {
		return err
	}
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(dst),
				Item:                item,
				ConditionExpression: aws.String(condEmailAbsent),
			}},
			{Delete: &types.Delete{
				TableName:           aws.String(src),
				Key:                 strKey(fieldEmail, a.Email),
				ConditionExpression: aws.String(condEmailExists),
			}},
		},
	})
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		reasons := tce.CancellationReasons
		if len(reasons) > 0 && aws.ToString(reasons[0].Code) == "ConditionalCheckFailed" {
			return fmt.Errorf("account %s: %w", a.Email, domain.ErrConflict)
		}
		if len(reasons) > 1 && aws.ToString(reasons[1].Code) == "ConditionalCheckFailed" {
			return fmt.Errorf("pending account %s: %w", a.Email, domain.ErrNotFound)
		}
	}
	return err
}

func (r *AccountRepo) update(ctx context.Context, coll domain.Collection, email string, updates map[string]interface{}) error {
	table, err := r.table(coll)
	if err != nil {
		return err
	}
	updates[fieldUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       strKey(fieldEmail, email),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ConditionExpression:       aws.String(condEmailExists),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("account %s: %w", email, domain.ErrNotFound)
	}
	return err
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
