package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// BookingRepo stores one kind of booking in a table keyed by email + booking_id.
type BookingRepo[T any] struct {
	client    *dynamodb.Client
	tableName string
}

func NewBookingRepo[T any](client *dynamodb.Client, tableName string) *BookingRepo[T] {
	return &BookingRepo[T]{client: client, tableName: tableName}
}

func (r *BookingRepo[T]) Put(ctx context.Context, b *T) error {
	item, err := attributevalue.MarshalMap(b)
	if err != nil {
		return fmt.Errorf("marshal booking: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *BookingRepo[T]) List(ctx context.Context) ([]T, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	var items []map[string]types.AttributeValue
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return unmarshalBookings[T](items)
}

func (r *BookingRepo[T]) ListByEmail(ctx context.Context, email string) ([]T, error) {
	items, err := r.queryByEmail(ctx, email, nil)
	if err != nil {
		return nil, err
	}
	return unmarshalBookings[T](items)
}

// DeleteMatching removes every booking of email whose attributes equal match
// and reports how many were removed.
func (r *BookingRepo[T]) DeleteMatching(ctx context.Context, email string, match map[string]string) (int, error) {
	items, err := r.queryByEmail(ctx, email, match)
	if err != nil {
		return 0, err
	}
	return r.deleteItems(ctx, email, items)
}

func (r *BookingRepo[T]) DeleteByEmail(ctx context.Context, email string) error {
	items, err := r.queryByEmail(ctx, email, nil)
	if err != nil {
		return err
	}
	_, err = r.deleteItems(ctx, email, items)
	return err
}

func (r *BookingRepo[T]) queryByEmail(ctx context.Context, email string, match map[string]string) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": fieldEmail,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: email},
		},
	}
	if len(match) > 0 {
		filter, names, values := buildEqualityFilter(match)
		input.FilterExpression = aws.String(filter)
		for k, v := range names {
			input.ExpressionAttributeNames[k] = v
		}
		for k, v := range values {
			input.ExpressionAttributeValues[k] = v
		}
	}

	p := dynamodb.NewQueryPaginator(r.client, input)
	var items []map[string]types.AttributeValue
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

func (r *BookingRepo[T]) deleteItems(ctx context.Context, email string, items []map[string]types.AttributeValue) (int, error) {
	deleted := 0
	for _, item := range items {
		var key struct {
			BookingID string `dynamodbav:"booking_id"`
		}
		if err := attributevalue.UnmarshalMap(item, &key); err != nil {
			return deleted, fmt.Errorf("unmarshal booking key: %w", err)
		}
		_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key:       compositeKey(fieldEmail, email, fieldBookingID, key.BookingID),
		})
		if err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func unmarshalBookings[T any](items []map[string]types.AttributeValue) ([]T, error) {
	out := make([]T, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &out); err != nil {
		return nil, fmt.Errorf("unmarshal bookings: %w", err)
	}
	return out, nil
}
