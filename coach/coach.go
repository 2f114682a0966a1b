// Package coach implements the AI features. Every result is stored through the sync
// engine, so it is available offline and mirrored like any other local change.
package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clementus360/mindset/config"
	"clementus360/mindset/llm"
	"clementus360/mindset/syncer"
	"clementus360/mindset/types"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrEmptyInput = errors.New("message cannot be empty")

// Generator completes text. *llm.Client implements it.
type Generator interface {
	Complete(ctx context.Context, system string, history []types.ChatMessage, input string) (string, error)
}

type Coach struct {
	gen    Generator
	engine *syncer.Engine
	cfg    types.ContextConfig
	log    logrus.FieldLogger
}

func New(gen Generator, engine *syncer.Engine, log logrus.FieldLogger) *Coach {
	if log == nil {
		log = config.Logger
	}
	return &Coach{
		gen:    gen,
		engine: engine,
		cfg:    config.ContextConfig,
		log:    log.WithField("component", "coach"),
	}
}

// Chat records the user's message, asks the coach model for a reply and records it.
// If generation fails the user's message is kept and the error is returned. A reply
// carrying the escalation marker is cleaned and flagged; a support ticket is opened when
// the app is online.
func (c *Coach) Chat(ctx context.Context, input string) (types.ChatResponse, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.ChatResponse{ErrorMessage: ErrEmptyInput.Error()}, ErrEmptyInput
	}
	input = llm.Truncate(input, c.cfg.MaxMessageChars)

	history := llm.TrimHistory(c.engine.GetChatHistory(ctx), c.cfg)
	userMsg, err := c.engine.AddChatMessage(ctx, types.RoleUser, input)
	if err != nil {
		return types.ChatResponse{ErrorMessage: "Failed to save message"}, err
	}

	reply, err := c.gen.Complete(ctx, strings.TrimSpace(llm.CoachSystemPrompt), history, input)
	if err != nil {
		c.log.Error("Coach reply failed: ", err)
		return types.ChatResponse{UserMessage: &userMsg, ErrorMessage: "The coach is unavailable right now. Please try again."},
			fmt.Errorf("failed to generate reply: %w", err)
	}

	reply, escalate := llm.StripEscalation(reply)
	modelMsg, err := c.engine.AddChatMessage(ctx, types.RoleModel, reply)
	if err != nil {
		return types.ChatResponse{UserMessage: &userMsg, ErrorMessage: "Failed to save reply"}, err
	}
	c.recordActivity(ctx, config.ActivitySourceChat)

	if escalate {
		c.log.Warn("Coach flagged the conversation for human support")
		if _, err := c.Escalate(ctx, "Coach conversation needs attention", input); err != nil {
			c.log.Warn("Could not open support ticket: ", err)
		}
	}

	return types.ChatResponse{
		Success:     true,
		UserMessage: &userMsg,
		Reply:       &modelMsg,
		Escalated:   escalate,
	}, nil
}

// ReflectGratitude stores a gratitude entry together with the coach's reflection.
func (c *Coach) ReflectGratitude(ctx context.Context, text string) (types.GratitudeEntry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.GratitudeEntry{}, ErrEmptyInput
	}
	reply, err := c.gen.Complete(ctx, llm.GratitudeSystemPrompt(), nil, text)
	if err != nil {
		return types.GratitudeEntry{}, fmt.Errorf("failed to reflect on gratitude: %w", err)
	}
	entry, err := c.engine.AddGratitude(ctx, text, reply)
	if err != nil {
		return types.GratitudeEntry{}, err
	}
	c.recordActivity(ctx, config.ActivitySourceGratitude)
	return entry, nil
}

// ReframeBelief turns a limiting belief into an empowering one and stores both.
func (c *Coach) ReframeBelief(ctx context.Context, limiting string) (types.BeliefEntry, error) {
	limiting = strings.TrimSpace(limiting)
	if limiting == "" {
		return types.BeliefEntry{}, ErrEmptyInput
	}
	reply, err := c.gen.Complete(ctx, llm.BeliefSystemPrompt(), nil, limiting)
	if err != nil {
		return types.BeliefEntry{}, fmt.Errorf("failed to reframe belief: %w", err)
	}
	entry, err := c.engine.AddBelief(ctx, limiting, strings.Trim(reply, "\"' \n"))
	if err != nil {
		return types.BeliefEntry{}, err
	}
	c.recordActivity(ctx, config.ActivitySourceBelief)
	return entry, nil
}

// ReviewPlanDay asks for feedback on an answer and completes the day with it. Locked
// days are rejected before the model is called.
func (c *Coach) ReviewPlanDay(ctx context.Context, day int, answer string) (types.PlanDay, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return types.PlanDay{}, ErrEmptyInput
	}

	plan := c.engine.GetPlan(ctx)
	if day < 1 || day > len(plan) {
		return types.PlanDay{}, fmt.Errorf("plan day %d: %w", day, syncer.ErrNotFound)
	}
	current := plan[day-1]
	if !current.Editable() || !syncer.PlanDayUnlocked(plan, day, c.engine.Now()) {
		return types.PlanDay{}, fmt.Errorf("plan day %d: %w", day, syncer.ErrDayLocked)
	}

	feedback, err := c.gen.Complete(ctx, strings.TrimSpace(llm.CoachSystemPrompt), nil, llm.PlanFeedbackInput(current, answer))
	if err != nil {
		return types.PlanDay{}, fmt.Errorf("failed to review plan day: %w", err)
	}
	feedback, _ = llm.StripEscalation(feedback)

	done, err := c.engine.CompletePlanDay(ctx, day, answer, feedback)
	if err != nil {
		return types.PlanDay{}, err
	}
	c.recordActivity(ctx, config.ActivitySourcePlan)
	return done, nil
}

type goalPlanReply struct {
	Title string `json:"title"`
	Steps []struct {
		Text   string `json:"text"`
		Timing string `json:"timing"`
	} `json:"steps"`
}

// GenerateGoalPlan breaks a goal into steps and stores the plan.
func (c *Coach) GenerateGoalPlan(ctx context.Context, goal, timeframe string) (types.GoalPlan, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return types.GoalPlan{}, ErrEmptyInput
	}
	reply, err := c.gen.Complete(ctx, llm.GoalPlanSystemPrompt(), nil, llm.GoalPlanInput(goal, timeframe))
	if err != nil {
		return types.GoalPlan{}, fmt.Errorf("failed to generate goal plan: %w", err)
	}

	var parsed goalPlanReply
	if err := llm.ExtractJSON(reply, &parsed); err != nil {
		c.log.WithField("reply", reply).Warn("Goal plan reply was not valid JSON")
		return types.GoalPlan{}, fmt.Errorf("failed to parse goal plan: %w", err)
	}

	plan := types.GoalPlan{Title: strings.TrimSpace(parsed.Title), Timeframe: timeframe}
	if plan.Title == "" {
		plan.Title = goal
	}
	for _, s := range parsed.Steps {
		if text := strings.TrimSpace(s.Text); text != "" {
			plan.Steps = append(plan.Steps, types.GoalStep{Text: text, Timing: strings.TrimSpace(s.Timing)})
		}
	}
	if len(plan.Steps) == 0 {
		return types.GoalPlan{}, fmt.Errorf("goal plan has no steps: %w", llm.ErrEmptyResponse)
	}
	return c.engine.AddGoalPlan(ctx, plan)
}

// AdviseTask stores a short tip on a checklist task.
func (c *Coach) AdviseTask(ctx context.Context, taskID string) (types.Task, error) {
	var task *types.Task
	tasks := c.engine.GetTasks(ctx)
	for i := range tasks {
		if tasks[i].ID == taskID {
			task = &tasks[i]
			break
		}
	}
	if task == nil {
		return types.Task{}, fmt.Errorf("task %s: %w", taskID, syncer.ErrNotFound)
	}

	input := task.Text
	if task.Note != "" {
		input += "\nNote: " + task.Note
	}
	advice, err := c.gen.Complete(ctx, llm.TaskAdviceSystemPrompt(), nil, input)
	if err != nil {
		return types.Task{}, fmt.Errorf("failed to advise on task: %w", err)
	}
	return c.engine.SetTaskAdvice(ctx, taskID, advice)
}

// Meditation is generated narration. Paragraphs are separated by blank lines.
type Meditation struct {
	ID    string `json:"id"`
	Theme string `json:"theme"`
	Text  string `json:"text"`
}

// GenerateMeditation writes a guided meditation on theme.
func (c *Coach) GenerateMeditation(ctx context.Context, theme string) (Meditation, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = "letting go of stress"
	}
	text, err := c.gen.Complete(ctx, llm.MeditationSystemPrompt(), nil, "Theme: "+theme)
	if err != nil {
		return Meditation{}, fmt.Errorf("failed to generate meditation: %w", err)
	}
	return Meditation{ID: uuid.NewString(), Theme: theme, Text: text}, nil
}

// Escalate opens a support ticket. It needs a connection.
func (c *Coach) Escalate(ctx context.Context, subject, transcript string) (types.SupportTicket, error) {
	return c.engine.CreateSupportTicket(ctx, subject, "in_app", transcript)
}

func (c *Coach) recordActivity(ctx context.Context, source string) {
	if _, err := c.engine.RecordActivity(ctx); err != nil {
		c.log.WithField("source", source).Warn("Failed to record activity: ", err)
	}
}
