package coach

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"unicode/utf8"

	"clementus360/mindset/llm"
	"clementus360/mindset/localstore"
	"clementus360/mindset/syncer"
	"clementus360/mindset/types"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type prompt struct {
	System  string
	History []types.ChatMessage
	Input   string
}

// scriptedGenerator returns replies in order and records every prompt.
type scriptedGenerator struct {
	mu      sync.Mutex
	replies []string
	err     error
	prompts []prompt
}

func (g *scriptedGenerator) Complete(_ context.Context, system string, history []types.ChatMessage, input string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt{System: system, History: history, Input: input})
	if g.err != nil {
		return "", g.err
	}
	if len(g.replies) == 0 {
		return "", llm.ErrEmptyResponse
	}
	reply := g.replies[0]
	g.replies = g.replies[1:]
	return reply, nil
}

type fixedUser string

func (u fixedUser) CurrentUserID() string { return string(u) }

func newTestCoach(t *testing.T, gen *scriptedGenerator) (*Coach, *syncer.Engine) {
	t.Helper()
	db, err := localstore.Open(filepath.Join(t.TempDir(), "coach.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log, _ := test.NewNullLogger()
	engine := syncer.New(db.KV(), nil, fixedUser("u1"), syncer.WithLogger(log))
	return New(gen, engine, log), engine
}

func TestChatRecordsBothTurns(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"First reply.", "Second reply."}}
	c, engine := newTestCoach(t, gen)
	ctx := context.Background()

	res, err := c.Chat(ctx, "  hello  ")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "hello", res.UserMessage.Text)
	assert.Equal(t, "First reply.", res.Reply.Text)

	_, err = c.Chat(ctx, "how do I start?")
	require.NoError(t, err)

	require.Len(t, gen.prompts, 2)
	assert.Len(t, gen.prompts[1].History, 2)
	assert.Equal(t, types.RoleModel, gen.prompts[1].History[1].Role)
	assert.Len(t, engine.GetChatHistory(ctx), 4)

	logs := engine.GetActivityLogs(ctx)
	require.Len(t, logs, 1)
	assert.Equal(t, 2, logs[0].Count)
}

func TestChatFailureKeepsUserMessage(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("quota exceeded")}
	c, engine := newTestCoach(t, gen)

	res, err := c.Chat(context.Background(), "are you there?")
	require.Error(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.ErrorMessage)

	history := engine.GetChatHistory(context.Background())
	require.Len(t, history, 1)
	assert.Equal(t, types.RoleUser, history[0].Role)

	_, err = c.Chat(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestChatStripsEscalationMarker(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"Please reach out to someone you trust. " + llm.EscalationMarker}}
	c, engine := newTestCoach(t, gen)

	res, err := c.Chat(context.Background(), "I feel unsafe")
	require.NoError(t, err)
	assert.True(t, res.Escalated)
	assert.NotContains(t, res.Reply.Text, llm.EscalationMarker)

	// Offline engine: no ticket, chat still succeeds.
	assert.Empty(t, engine.GetSupportTickets(context.Background()))
}

func TestReframeAndGratitude(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{`"I learn from every attempt."`, "That shows you notice kindness."}}
	c, engine := newTestCoach(t, gen)
	ctx := context.Background()

	belief, err := c.ReframeBelief(ctx, "I always fail")
	require.NoError(t, err)
	assert.Equal(t, "I learn from every attempt.", belief.Empowering)
	assert.Equal(t, llm.BeliefSystemPrompt(), gen.prompts[0].System)

	entry, err := c.ReflectGratitude(ctx, "my friend called")
	require.NoError(t, err)
	assert.Equal(t, "That shows you notice kindness.", entry.AIResponse)

	assert.Len(t, engine.GetBeliefs(ctx), 1)
	assert.Len(t, engine.GetGratitude(ctx), 1)
}

func TestReviewPlanDay(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"Great insight."}}
	c, _ := newTestCoach(t, gen)
	ctx := context.Background()

	_, err := c.ReviewPlanDay(ctx, 2, "answer")
	assert.ErrorIs(t, err, syncer.ErrDayLocked)
	assert.Empty(t, gen.prompts)

	day, err := c.ReviewPlanDay(ctx, 1, "I keep telling myself I'm not ready")
	require.NoError(t, err)
	assert.True(t, day.Completed)
	assert.Equal(t, "Great insight.", day.AIFeedback)
	assert.Contains(t, gen.prompts[0].Input, "Day 1")

	_, err = c.ReviewPlanDay(ctx, 1, "again")
	assert.ErrorIs(t, err, syncer.ErrDayLocked)
}

func TestGenerateGoalPlan(t *testing.T) {
	reply := "Here you go:\n```json\n{\"title\": \"Run a 10k\", \"steps\": [{\"text\": \"Run 3x a week\", \"timing\": \"Weeks 1-4\"}, {\"text\": \"Race\", \"timing\": \"Week 12\"},]}\n```"
	gen := &scriptedGenerator{replies: []string{reply, "no json here"}}
	c, engine := newTestCoach(t, gen)
	ctx := context.Background()

	plan, err := c.GenerateGoalPlan(ctx, "run a 10k", "3 months")
	require.NoError(t, err)
	assert.Equal(t, "Run a 10k", plan.Title)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, "Weeks 1-4", plan.Steps[0].Timing)
	assert.Len(t, engine.GetGoalPlans(ctx), 1)

	_, err = c.GenerateGoalPlan(ctx, "learn piano", "1 year")
	assert.Error(t, err)
	assert.Len(t, engine.GetGoalPlans(ctx), 1)
}

func TestAdviseTaskAndMeditation(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"Put your shoes by the door.", "Breathe.\n\nRelax."}}
	c, engine := newTestCoach(t, gen)
	ctx := context.Background()

	task := engine.GetTasks(ctx)[0]
	advised, err := c.AdviseTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Put your shoes by the door.", advised.AIAdvice)

	_, err = c.AdviseTask(ctx, "missing")
	assert.ErrorIs(t, err, syncer.ErrNotFound)

	med, err := c.GenerateMeditation(ctx, "")
	require.NoError(t, err)
	assert.NotEmpty(t, med.ID)
	assert.Equal(t, "Breathe.\n\nRelax.", med.Text)
}

func TestChatCutsLongInputOnRuneBoundary(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"Noted."}}
	c, engine := newTestCoach(t, gen)
	c.cfg.MaxMessageChars = 2

	_, err := c.Chat(context.Background(), "días difíciles")
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	assert.Equal(t, "d", gen.prompts[0].Input)
	assert.True(t, utf8.ValidString(gen.prompts[0].Input))
	assert.Equal(t, "d", engine.GetChatHistory(context.Background())[0].Text)
}
