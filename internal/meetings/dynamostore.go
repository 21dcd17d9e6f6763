package meetings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// DynamoStore is a Store backed by a single DynamoDB table keyed on "id",
// with the attendee list stored as a nested list attribute on the meeting
// item — there are at most two attendees per meeting, so a separate table
// and query would be pure overhead.
type DynamoStore struct {
	client *dynamodb.Client
	table  string
}

// NewDynamoStore wraps an already-configured AWS SDK v2 DynamoDB client.
func NewDynamoStore(client *dynamodb.Client, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

func (d *DynamoStore) CreateMeeting(ctx context.Context, attendeeName string) (Meeting, Attendee, error) {
	attendee := Attendee{ID: uuid.New().String(), Name: attendeeName, CreatedAt: time.Now()}
	meeting := Meeting{ID: uuid.New().String(), CreatedAt: time.Now(), Attendees: []Attendee{attendee}}

	item, err := attributevalue.MarshalMap(meeting)
	if err != nil {
		return Meeting{}, Attendee{}, fmt.Errorf("marshal meeting: %w", err)
	}
	if _, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      item,
	}); err != nil {
		return Meeting{}, Attendee{}, fmt.Errorf("put meeting: %w", err)
	}
	return meeting, attendee, nil
}

func (d *DynamoStore) AddAttendee(ctx context.Context, meetingID, attendeeName string) (Meeting, Attendee, error) {
	meeting, err := d.Get(ctx, meetingID)
	if err != nil {
		return Meeting{}, Attendee{}, err
	}
	if len(meeting.Attendees) >= maxAttendees {
		return Meeting{}, Attendee{}, ErrMeetingFull
	}

	attendee := Attendee{ID: uuid.New().String(), Name: attendeeName, CreatedAt: time.Now()}
	attendeeItem, err := attributevalue.MarshalMap(attendee)
	if err != nil {
		return Meeting{}, Attendee{}, fmt.Errorf("marshal attendee: %w", err)
	}

	_, err = d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(d.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: meetingID},
		},
		UpdateExpression:         aws.String("SET attendees = list_append(attendees, :a)"),
		ConditionExpression:      aws.String("size(attendees) < :max"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":a":   &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberM{Value: attendeeItem}}},
			":max": &types.AttributeValueMemberN{Value: "2"},
		},
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return Meeting{}, Attendee{}, ErrMeetingFull
		}
		return Meeting{}, Attendee{}, fmt.Errorf("append attendee: %w", err)
	}

	meeting.Attendees = append(meeting.Attendees, attendee)
	return meeting, attendee, nil
}

func (d *DynamoStore) Get(ctx context.Context, meetingID string) (Meeting, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: meetingID},
		},
	})
	if err != nil {
		return Meeting{}, fmt.Errorf("get meeting: %w", err)
	}
	if out.Item == nil {
		return Meeting{}, ErrNotFound
	}

	var meeting Meeting
	if err := attributevalue.UnmarshalMap(out.Item, &meeting); err != nil {
		return Meeting{}, fmt.Errorf("unmarshal meeting: %w", err)
	}
	return meeting, nil
}
