package exam_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-dumps/internal/db"
	"github.com/mind-engage/mindengage-dumps/internal/exam"
)

func set(code string) exam.QuestionSet {
	return exam.QuestionSet{
		ExamCode: code,
		Title:    "Exam " + code,
		Config:   exam.Config{PassingScore: 70, TotalQuestions: 1, DurationSeconds: 3600},
		Questions: []exam.Question{{
			ID:             "q1",
			Type:           exam.TypeSingleChoice,
			Options:        []exam.Option{{Label: "A", Text: "yes"}, {Label: "B", Text: "no"}},
			ExpectedAnswer: json.RawMessage(`"A"`),
			Explanation:    "because",
		}},
	}
}

func banks(t *testing.T) map[string]exam.Bank {
	t.Helper()
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })
	return map[string]exam.Bank{
		"memory": exam.NewInMemoryBank(),
		"sql":    exam.NewSQLBank(dbh),
	}
}

func TestBank_PutGet(t *testing.T) {
	for name, b := range banks(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			in := set("AZ-900")
			in.CreatedAt = 42
			require.NoError(t, b.Put(ctx, in))

			got, err := b.Get(ctx, "AZ-900")
			require.NoError(t, err)
			assert.Equal(t, in.ExamCode, got.ExamCode)
			assert.Equal(t, in.Config, got.Config)
			require.Len(t, got.Questions, 1)
			assert.JSONEq(t, `"A"`, string(got.Questions[0].ExpectedAnswer))

			_, err = b.Get(ctx, "NOPE")
			assert.ErrorIs(t, err, exam.ErrNotFound)
		})
	}
}

func TestBank_PutReplaces(t *testing.T) {
	for name, b := range banks(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, b.Put(ctx, set("AZ-104")))
			updated := set("AZ-104")
			updated.Title = "Administrator"
			require.NoError(t, b.Put(ctx, updated))

			got, err := b.Get(ctx, "AZ-104")
			require.NoError(t, err)
			assert.Equal(t, "Administrator", got.Title)
		})
	}
}

func TestBank_RejectsBadShape(t *testing.T) {
	for name, b := range banks(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			assert.Error(t, b.Put(ctx, exam.QuestionSet{}))

			dup := set("X")
			dup.Questions = append(dup.Questions, dup.Questions[0])
			assert.Error(t, b.Put(ctx, dup))

			bad := set("Y")
			bad.Config.PassingScore = 120
			assert.Error(t, b.Put(ctx, bad))
		})
	}
}

func TestBank_List(t *testing.T) {
	for name, b := range banks(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, c := range []string{"SAA-C03", "AZ-900", "AZ-104"} {
				require.NoError(t, b.Put(ctx, set(c)))
			}
			list, err := b.List(ctx, exam.ListOpts{Q: "az"})
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "AZ-104", list[0].ExamCode)
			assert.Equal(t, 1, list[0].TotalQuestions)

			list, err = b.List(ctx, exam.ListOpts{Limit: 1, Offset: 2})
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "SAA-C03", list[0].ExamCode)
		})
	}
}

func TestQuestionSet_Public(t *testing.T) {
	s := set("AZ-900")
	pub := s.Public()
	assert.Nil(t, pub.Questions[0].ExpectedAnswer)
	assert.Empty(t, pub.Questions[0].Explanation)
	assert.NotNil(t, s.Questions[0].ExpectedAnswer, "original untouched")
}

func TestCachedBank(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	code := fmt.Sprintf("CACHE-%d", time.Now().UnixNano())
	t.Cleanup(func() { client.Del(context.Background(), "exam:"+code+":set") })

	inner := exam.NewInMemoryBank()
	cb := exam.NewCachedBank(inner, client, time.Minute)
	require.NoError(t, cb.Put(ctx, set(code)))

	got, err := cb.Get(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, code, got.ExamCode)

	n, err := client.Exists(ctx, "exam:"+code+":set").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	updated := set(code)
	updated.Title = "changed"
	require.NoError(t, cb.Put(ctx, updated))
	got, err = cb.Get(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Title)
}
