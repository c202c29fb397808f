package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"codeberg.org/notecanvas/server/internal/bridge"
	"codeberg.org/notecanvas/server/internal/llm"
	"codeberg.org/notecanvas/server/internal/logger"
	"codeberg.org/notecanvas/server/internal/state"
)

const (
	defaultActionTimeout = 10 * time.Minute
	routerMaxTokens      = 256
)

func New(resolve StoreResolver, opts Options) *Agent {
	timeout := opts.ActionTimeout
	if timeout <= 0 {
		timeout = defaultActionTimeout
	}

	return &Agent{
		resolve:       resolve,
		selector:      opts.Selector,
		fetcher:       opts.Fetcher,
		bridge:        opts.Bridge,
		actionTimeout: timeout,
	}
}

// Run executes one turn: download missing material contents, route the
// latest message, then converse, write the note or propose a delete.
func (a *Agent) Run(ctx context.Context, req RunRequest) (*RunResponse, error) {
	if req.SessionID == "" {
		return nil, ErrMissingSession
	}

	if len(req.Messages) == 0 {
		return nil, ErrNoMessages
	}

	store, err := a.resolve(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	if _, busy := a.running.LoadOrStore(req.SessionID, struct{}{}); busy {
		return nil, ErrRunInProgress
	}
	defer a.running.Delete(req.SessionID)

	log := logger.ForSession(req.SessionID)

	a.download(ctx, store, log)

	model, err := a.selector.Select(ctx, store.State().Model)
	if err != nil {
		return nil, err
	}

	decision, err := a.route(ctx, model, store.State(), req.Messages, log)
	if err != nil {
		return nil, err
	}

	log.Info("agent turn routed", "intent", decision.Intent, "urls", len(decision.URLs))

	var reply string

	switch decision.Intent {
	case IntentNoteCreation:
		reply, err = a.createNote(ctx, model, store, req.Messages, log)
	case IntentDeleteMaterials:
		reply, err = a.proposeDelete(ctx, store, req.SessionID, decision.URLs, log)
	default:
		reply, err = a.converse(ctx, model, store.State(), req.Messages)
	}

	if err != nil {
		return nil, err
	}

	cfg := model.Config()

	return &RunResponse{
		Reply:    reply,
		Intent:   decision.Intent,
		Provider: cfg.Provider,
		Model:    cfg.Model,
		Version:  store.Version(),
	}, nil
}

// appends a progress log and returns a func that marks it done
func (a *Agent) beginStep(store *state.Store, message string) func() {
	next, i := store.State().AppendLog(message)
	store.Replace(next)

	return func() {
		cur := store.State()

		// the canvas may have cleared the logs since
		if i < len(cur.Logs) && cur.Logs[i].Message == message && !cur.Logs[i].Done {
			store.Replace(cur.MarkLogDone(i))
		}
	}
}

func (a *Agent) download(ctx context.Context, store *state.Store, log *slog.Logger) {
	if a.fetcher == nil {
		return
	}

	seen := make(map[string]bool)

	for _, m := range store.State().ReferenceMaterials {
		if m.URL == "" || m.Content != "" || m.Type == state.MaterialImage || seen[m.URL] {
			continue
		}

		seen[m.URL] = true

		done := a.beginStep(store, fmt.Sprintf("正在读取参考素材：%s", materialLabel(m)))

		content, err := a.fetcher.Fetch(ctx, m.URL)
		if err != nil {
			log.Warn("failed to download reference material", "url", m.URL, "error", err)
			done()
			continue
		}

		if content != "" {
			store.Replace(withContent(store.State(), m.URL, content))
		}

		log.Debug("reference material downloaded", "url", m.URL, "runes", len([]rune(content)))

		done()
	}
}

func (a *Agent) route(ctx context.Context, model llm.ChatModel, s state.AgentState, messages []llm.Message, log *slog.Logger) (routeDecision, error) {
	resp, err := model.Generate(ctx, llm.ChatRequest{
		SystemPrompt: buildPrompt(routerInstructions, s),
		Messages:     messages,
		MaxTokens:    routerMaxTokens,
	})
	if err != nil {
		return routeDecision{}, fmt.Errorf("failed to route message: %w", err)
	}

	var decision routeDecision
	if err := parseJSON(resp.Text, &decision); err != nil {
		log.Debug("router output not parseable, falling back to conversation", "error", err)
		return routeDecision{Intent: IntentConversation}, nil
	}

	decision.Intent = Intent(strings.TrimSpace(string(decision.Intent)))

	if !knownIntent(decision.Intent) {
		decision.Intent = IntentConversation
	}

	if decision.Intent == IntentDeleteMaterials && len(decision.URLs) == 0 {
		decision.Intent = IntentConversation
	}

	return decision, nil
}

func (a *Agent) converse(ctx context.Context, model llm.ChatModel, s state.AgentState, messages []llm.Message) (string, error) {
	resp, err := model.Generate(ctx, llm.ChatRequest{
		SystemPrompt: buildPrompt(conversationInstructions, s),
		Messages:     messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}

func (a *Agent) createNote(ctx context.Context, model llm.ChatModel, store *state.Store, messages []llm.Message, log *slog.Logger) (string, error) {
	done := a.beginStep(store, "正在生成小红书笔记")
	defer done()

	resp, err := model.Generate(ctx, llm.ChatRequest{
		SystemPrompt: buildPrompt(noteInstructions, store.State()),
		Messages:     messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate note: %w", err)
	}

	var draft noteDraft
	if err := parseJSON(resp.Text, &draft); err != nil {
		// keep the prose rather than lose the turn
		log.Warn("note output was not JSON, using it as the note body", "error", err)

		note := strings.TrimSpace(resp.Text)
		draft = noteDraft{Note: &note}
	}

	snap := store.Replace(applyDraft(store.State(), draft))

	log.Info("note written", "version", snap.Version, "tags", len(snap.State.Tags))

	if draft.Reply != "" {
		return draft.Reply, nil
	}

	return "笔记已生成，可以在画布上查看和修改。", nil
}

// asks the canvas to confirm deleting urls and performs the delete on YES.
// A timeout closes the request without deleting anything.
func (a *Agent) proposeDelete(ctx context.Context, store *state.Store, sessionID string, urls []string, log *slog.Logger) (string, error) {
	if a.bridge == nil {
		return "当前无法删除参考素材。", nil
	}

	req, err := a.bridge.Issue(sessionID, bridge.ActionDeleteReferenceMaterials, bridge.DeleteReferenceMaterialsArgs{URLs: urls})
	if err != nil {
		return "", err
	}

	done := a.beginStep(store, "等待确认删除参考素材")
	defer done()

	waitCtx, cancel := context.WithTimeout(ctx, a.actionTimeout)
	defer cancel()

	decision, err := a.bridge.Await(waitCtx, req.ID)

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		if cancelErr := a.bridge.Cancel(req.ID); cancelErr != nil {
			log.Warn("failed to cancel action request", "request_id", req.ID, "error", cancelErr)
		}

		log.Info("delete proposal timed out", "request_id", req.ID)

		return "等待确认超时，没有删除任何参考素材。", nil

	case errors.Is(err, bridge.ErrRequestClosed):
		return "删除请求已关闭，没有删除任何参考素材。", nil

	case err != nil:
		return "", err
	}

	log.Info("delete proposal decided", "request_id", req.ID, "decision", decision)

	if decision != bridge.Yes {
		return "好的，参考素材已保留。", nil
	}

	cur := store.State()
	removed := len(cur.MatchingMaterials(urls))
	store.Replace(cur.RemoveReferenceMaterials(urls))

	return fmt.Sprintf("已删除 %d 条参考素材。", removed), nil
}
