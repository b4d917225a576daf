package dynamo

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/web3ix-api/internal/domain"
)

// PostRepo reads the posts table. Posts are written by the content tooling,
// not by this service.
type PostRepo struct {
	client    api
	tableName string
}

func NewPostRepo(client api, tableName string) *PostRepo {
	return &PostRepo{client: client, tableName: tableName}
}

// List returns every post, newest first.
func (r *PostRepo) List(ctx context.Context) ([]domain.Post, error) {
	return r.scan(ctx, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
}

// ListVideos returns posts flagged is_video, newest first.
func (r *PostRepo) ListVideos(ctx context.Context) ([]domain.Post, error) {
	return r.scan(ctx, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		FilterExpression:         aws.String("#v = :t"),
		ExpressionAttributeNames: map[string]string{"#v": fieldIsVideo},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
}

func (r *PostRepo) scan(ctx context.Context, input *dynamodb.ScanInput) ([]domain.Post, error) {
	posts := []domain.Post{}
	p := dynamodb.NewScanPaginator(r.client, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.Post
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		posts = append(posts, page...)
	}
	// Scan order is arbitrary; sort by created_at descending.
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}
