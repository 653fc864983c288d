package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"softsell-assistant/internal/domain"
)

// dynamodbAPI is the minimal DynamoDB interface required by FAQStore.
// Defined here for testability.
type dynamodbAPI interface {
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// FAQStore reads the canned-answer table from DynamoDB. Each item carries a
// question, an answer and an optional numeric position used for ordering.
type FAQStore struct {
	api       dynamodbAPI
	tableName string
}

func NewFAQStore(api dynamodbAPI, tableName string) (*FAQStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &FAQStore{api: api, tableName: tableName}, nil
}

type rankedAnswer struct {
	position int
	answer   domain.CannedAnswer
}

// LoadCannedAnswers scans the whole table and returns entries ordered by
// position, then question.
func (s *FAQStore) LoadCannedAnswers(ctx context.Context) ([]domain.CannedAnswer, error) {
	in := &dynamodb.ScanInput{
		TableName:      aws.String(s.tableName),
		ConsistentRead: aws.Bool(true),
	}

	var ranked []rankedAnswer
	p := dynamodb.NewScanPaginator(s.api, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("repository: LoadCannedAnswers scan: %w", err)
		}
		for _, item := range page.Items {
			r, err := itemToCannedAnswer(item)
			if err != nil {
				return nil, fmt.Errorf("repository: LoadCannedAnswers unmarshal: %w", err)
			}
			ranked = append(ranked, r)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].position != ranked[j].position {
			return ranked[i].position < ranked[j].position
		}
		return ranked[i].answer.Question < ranked[j].answer.Question
	})

	out := make([]domain.CannedAnswer, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.answer)
	}
	return out, nil
}

func itemToCannedAnswer(item map[string]types.AttributeValue) (rankedAnswer, error) {
	question, err := strAttr(item, "question")
	if err != nil {
		return rankedAnswer{}, err
	}
	answer, err := strAttr(item, "answer")
	if err != nil {
		return rankedAnswer{}, err
	}
	position := 0
	if _, ok := item["position"]; ok {
		position, err = intAttr(item, "position")
		if err != nil {
			return rankedAnswer{}, err
		}
	}
	return rankedAnswer{
		position: position,
		answer:   domain.CannedAnswer{Question: question, Answer: answer},
	}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
