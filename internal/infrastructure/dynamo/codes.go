package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/web3ix-api/internal/domain"
)

// CodeRepo stores email verification codes.
// PK: email, SK: code. expires_at doubles as the table's TTL attribute, but
// TTL deletion is lazy so expiry is always re-checked on read.
type CodeRepo struct {
	client    api
	tableName string
}

func NewCodeRepo(client api, tableName string) *CodeRepo {
	return &CodeRepo{client: client, tableName: tableName}
}

// ClearActive deletes every code row for email. Zero matches is not an error.
func (r *CodeRepo) ClearActive(ctx context.Context, email string) error {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("#e = :e"),
		ProjectionExpression:   aws.String("#e, #c"),
		ExpressionAttributeNames: map[string]string{
			"#e": fieldEmail,
			"#c": fieldCode,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e": &types.AttributeValueMemberS{Value: email},
		},
	})
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, item := range out.Items {
			code, ok := item[fieldCode].(*types.AttributeValueMemberS)
			if !ok {
				continue
			}
			if err := r.Consume(ctx, email, code.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *CodeRepo) Issue(ctx context.Context, v *domain.VerificationCode) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal verification code: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// FindValid returns the unexpired row matching email and code.
// Returns domain.ErrNotFound when there is none. More than one match is a
// broken store invariant and is reported as domain.ErrStorage.
func (r *CodeRepo) FindValid(ctx context.Context, email, code string, now time.Time) (*domain.VerificationCode, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("#e = :e AND #c = :c"),
		FilterExpression:       aws.String("#x >= :now"),
		ExpressionAttributeNames: map[string]string{
			"#e": fieldEmail,
			"#c": fieldCode,
			"#x": fieldExpiresAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e":   &types.AttributeValueMemberS{Value: email},
			":c":   &types.AttributeValueMemberS{Value: code},
			":now": &types.AttributeValueMemberN{Value: unixCeil(now)},
		},
	})
	if err != nil {
		return nil, err
	}
	switch len(out.Items) {
	case 0:
		return nil, fmt.Errorf("verification code not found: %w", domain.ErrNotFound)
	case 1:
	default:
		return nil, fmt.Errorf("%d active codes match %s: %w", len(out.Items), email, domain.ErrStorage)
	}
	var v domain.VerificationCode
	if err := attributevalue.UnmarshalMap(out.Items[0], &v); err != nil {
		return nil, err
	}
	if v.Expired(now) {
		return nil, fmt.Errorf("verification code expired: %w", domain.ErrNotFound)
	}
	return &v, nil
}

// Consume deletes a single code row. Deleting a missing row is not an error.
func (r *CodeRepo) Consume(ctx context.Context, email, code string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey(fieldEmail, email, fieldCode, code),
	})
	return err
}

// DeleteExpired removes rows whose expiry is before now and returns how many
// were deleted. It scans the whole table, so it is meant for the periodic reaper only.
func (r *CodeRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("#x < :now"),
		ExpressionAttributeNames: map[string]string{
			"#x": fieldExpiresAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: unixCeil(now)},
		},
	})
	deleted := 0
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return deleted, err
		}
		var rows []domain.VerificationCode
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &rows); err != nil {
			return deleted, err
		}
		for _, row := range rows {
			if err := r.Consume(ctx, row.Email, row.Code); err != nil {
				return deleted, err
			}
			deleted++
		}
	}
	return deleted, nil
}

// unixCeil renders now as Unix seconds rounded up, so comparisons against
// whole-second expiries treat any fraction past the expiry second as expired.
func unixCeil(now time.Time) string {
	sec := now.Unix()
	if now.Nanosecond() > 0 {
		sec++
	}
	return strconv.FormatInt(sec, 10)
}
