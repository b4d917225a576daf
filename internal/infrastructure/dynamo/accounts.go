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
	"github.com/web3ix-api/internal/domain"
)

// AccountRepo backs the local identity provider.
// PK: account_id, GSI email-index on email. Each account has a companion
// guard row keyed "email#<addr>" whose owner_id points at the account; the
// guard makes email unique and gives a strongly consistent email lookup.
type AccountRepo struct {
	client    api
	tableName string
}

func NewAccountRepo(client api, tableName string) *AccountRepo {
	return &AccountRepo{client: client, tableName: tableName}
}

func emailGuardKey(email string) string { return "email#" + email }

// Put inserts a new account and its email guard in one transaction.
// Returns domain.ErrConflict when the email (or account_id) is already taken.
func (r *AccountRepo) Put(ctx context.Context, a *domain.Account) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	guard := map[string]types.AttributeValue{
		fieldAccountID: &types.AttributeValueMemberS{Value: emailGuardKey(a.Email)},
		fieldOwnerID:   &types.AttributeValueMemberS{Value: a.ID},
	}
	notExists := aws.String("attribute_not_exists(#id)")
	names := map[string]string{"#id": fieldAccountID}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{TableName: aws.String(r.tableName), Item: guard, ConditionExpression: notExists, ExpressionAttributeNames: names}},
			{Put: &types.Put{TableName: aws.String(r.tableName), Item: item, ConditionExpression: notExists, ExpressionAttributeNames: names}},
		},
	})
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) && conditionFailed(tce) {
		return fmt.Errorf("account for %s: %w", a.Email, domain.ErrConflict)
	}
	return err
}

func conditionFailed(tce *types.TransactionCanceledException) bool {
	for _, reason := range tce.CancellationReasons {
		if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}

// Get is a strongly consistent read by account_id.
func (r *AccountRepo) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldAccountID, accountID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByEmail resolves email through its guard row and then reads the account
// itself, both with consistent reads, so an account created or confirmed a
// moment ago is visible. Accounts without a guard fall back to email-index,
// whose hit is re-read by id before being returned.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldAccountID, emailGuardKey(email)),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if owner, ok := out.Item[fieldOwnerID].(*types.AttributeValueMemberS); ok {
		return r.Get(ctx, owner.Value)
	}

	id, err := r.indexedID(ctx, email)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// indexedID looks email up on the eventually consistent email-index.
func (r *AccountRepo) indexedID(ctx context.Context, email string) (string, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("email-index"),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": fieldEmail, "#id": fieldAccountID},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: email}},
		ProjectionExpression:      aws.String("#id"),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return "", err
	}
	if len(out.Items) == 0 {
		return "", fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	id, ok := out.Items[0][fieldAccountID].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("email-index row without %s: %w", fieldAccountID, domain.ErrStorage)
	}
	return id.Value, nil
}

func (r *AccountRepo) Update(ctx context.Context, accountID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldAccountID, accountID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ConditionExpression:       aws.String("attribute_exists(" + fieldAccountID + ")"),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	return err
}

// MarkEmailConfirmed stamps email_confirmed_at on the account.
func (r *AccountRepo) MarkEmailConfirmed(ctx context.Context, accountID string, at time.Time) error {
	return r.Update(ctx, accountID, map[string]interface{}{fieldEmailConfirmedAt: at.UTC()})
}
