package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math/rand"
	"strconv"

	"github.com/heroiclabs/nakama-common/runtime"

	"github.com/Vycas/1000-online/internal/app"
	"github.com/Vycas/1000-online/internal/bot"
	"github.com/Vycas/1000-online/internal/config"
	"github.com/Vycas/1000-online/internal/domain"
	"github.com/Vycas/1000-online/internal/ports"
)

// MatchState holds the runtime state for the Nakama match handler. The
// authoritative session itself lives in storage behind the app service; the
// handler only keeps connection bookkeeping and bot pacing.
type MatchState struct {
	SessionID string                      `json:"session_id"`
	Tick      int64                       `json:"tick"`
	Presences map[string]runtime.Presence `json:"-"` // user ID -> presence for targeted messaging
	App       *app.Service                `json:"-"`

	BotsEnabled          bool                  `json:"bots_enabled"`
	BotMinDelay          int                   `json:"bot_min_delay"`           // min seconds a bot waits
	BotMaxDelay          int                   `json:"bot_max_delay"`           // max seconds a bot waits
	BotAutoFillDelay     int                   `json:"bot_auto_fill_delay"`     // seconds before bots fill a solo lobby
	BotWaitUntil         int64                 `json:"bot_wait_until"`          // tick when the next bot may act
	LastSinglePlayerTick int64                 `json:"last_single_player_tick"` // tick when a solo human started waiting
	Bots                 map[string]*bot.Agent `json:"-"`
}

// matchLabel is the JSON label advertised for match listing queries.
type matchLabel struct {
	Open  int    `json:"open"`
	Game  string `json:"game"`
	State string `json:"state"`
}

// actionMessage is the JSON payload of client action messages.
type actionMessage struct {
	Card string `json:"card,omitempty"`
	Bid  int    `json:"bid,omitempty"`
}

// errorMessage is sent privately on a rejected action.
type errorMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	state := &MatchState{
		SessionID: matchID,
		Presences: make(map[string]runtime.Presence),
		App:       app.NewService(NewStorageStore(nk), config.GetRules(), nil),
		Bots:      make(map[string]*bot.Agent),
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["thousand_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env["thousand_bot_min_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMinDelay = i
		}
	}
	if val, ok := env["thousand_bot_max_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMaxDelay = i
		}
	}
	state.BotAutoFillDelay = config.GetGameConfig().GetBotAutoFillDelay()
	if val, ok := env["thousand_bot_auto_fill_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotAutoFillDelay = i
		}
	}
	if state.BotMinDelay == 0 {
		state.BotMinDelay = 1
	}
	if state.BotMaxDelay == 0 {
		state.BotMaxDelay = 3
	}
	if state.BotAutoFillDelay == 0 {
		state.BotAutoFillDelay = 5
	}

	label, err := json.Marshal(matchLabel{Open: domain.NumSeats, Game: "thousand", State: "lobby"})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(label)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	session, err := matchState.App.Session(ctx, matchState.SessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return matchState, true, ""
		}
		logger.Error("MatchJoinAttempt: Failed to load session: %v", err)
		return matchState, false, "session unavailable"
	}
	if _, err := session.SeatOf(presence.GetUserId()); err == nil {
		// Reconnecting player.
		return matchState, true, ""
	}
	if session.IsFull() {
		return matchState, false, "Match full"
	}
	return matchState, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if _, err := matchState.App.Session(ctx, matchState.SessionID); errors.Is(err, ports.ErrSessionNotFound) {
			if _, err := matchState.App.HostSession(ctx, matchState.SessionID, userID); err != nil {
				logger.Error("MatchJoin: Failed to host session for %s: %v", userID, err)
			}
			continue
		}

		events, err := matchState.App.Join(ctx, matchState.SessionID, userID)
		if err != nil {
			logger.Warn("MatchJoin: User %s could not take a seat: %v", userID, err)
			continue
		}
		for _, ev := range events {
			mh.broadcastEvent(matchState, dispatcher, logger, ev)
		}
	}

	mh.updateLabel(ctx, matchState, dispatcher, logger)
	mh.sendViews(ctx, matchState, dispatcher, logger)
	return matchState
}

// MatchLeave is called when one or more players disconnect. Seats are kept
// so a player can reconnect into the running session.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	matchState.Tick = tick

	acted := false
	for _, msg := range messages {
		if mh.handleMessage(ctx, matchState, dispatcher, logger, msg) {
			acted = true
		}
	}

	if matchState.BotsEnabled {
		if mh.processBots(ctx, matchState, dispatcher, logger) {
			acted = true
		}
	}

	if acted {
		mh.updateLabel(ctx, matchState, dispatcher, logger)
		mh.sendViews(ctx, matchState, dispatcher, logger)
	}
	return matchState
}

// handleMessage dispatches one client action, reporting whether the session
// changed.
func (mh *matchHandler) handleMessage(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) bool {
	senderID := msg.GetUserId()
	var request actionMessage
	if len(msg.GetData()) > 0 {
		if err := json.Unmarshal(msg.GetData(), &request); err != nil {
			logger.Warn("MatchLoop: Invalid payload from %s: %v", senderID, err)
			mh.sendError(state, dispatcher, logger, senderID, 400, "invalid payload")
			return false
		}
	}

	if msg.GetOpCode() == OpRequestView {
		mh.sendViewTo(ctx, state, dispatcher, logger, senderID)
		return false
	}

	events, err := mh.applyAction(ctx, state, senderID, msg.GetOpCode(), request)
	if err != nil {
		if domain.IsRuleError(err) {
			mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		} else {
			logger.Error("MatchLoop: Action %d from %s failed: %v", msg.GetOpCode(), senderID, err)
			mh.sendError(state, dispatcher, logger, senderID, 500, "internal error")
		}
		return false
	}
	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
	return true
}

// applyAction maps an op code to the app service call for the given user.
func (mh *matchHandler) applyAction(ctx context.Context, state *MatchState, userID string, op int64, request actionMessage) ([]app.Event, error) {
	sid := state.SessionID
	switch op {
	case OpDeal:
		return state.App.Deal(ctx, sid, userID)
	case OpGoBlind:
		return nil, state.App.DeclareBlind(ctx, sid, userID)
	case OpGoOpen:
		return state.App.DeclareOpen(ctx, sid, userID)
	case OpRaiseBet:
		return state.App.RaiseBet(ctx, sid, userID, request.Bid)
	case OpPass:
		return state.App.Pass(ctx, sid, userID)
	case OpCollectBank:
		return state.App.CollectBank(ctx, sid, userID)
	case OpDiscardCard:
		return nil, state.App.Discard(ctx, sid, userID, request.Card)
	case OpRetrieveCard:
		return nil, state.App.Retrieve(ctx, sid, userID, request.Card)
	case OpStartGame:
		return state.App.Start(ctx, sid, userID, request.Bid)
	case OpTakePlus:
		return state.App.TakePlus(ctx, sid, userID)
	case OpPlayCard:
		return state.App.PlayCard(ctx, sid, userID, request.Card)
	default:
		return nil, domain.NewRuleError("unknown action")
	}
}

// processBots fills a solo lobby with bots after a delay and lets seated
// bots take their turns, reporting whether anything happened.
func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) bool {
	session, err := state.App.Session(ctx, state.SessionID)
	if err != nil {
		return false
	}

	if !session.IsFull() {
		if len(state.Presences) != 1 {
			state.LastSinglePlayerTick = 0
			return false
		}
		if state.LastSinglePlayerTick == 0 {
			state.LastSinglePlayerTick = state.Tick
			return false
		}
		if state.Tick-state.LastSinglePlayerTick < int64(state.BotAutoFillDelay) {
			return false
		}
		state.LastSinglePlayerTick = 0
		added := false
		for seat := session.Joined; seat < domain.NumSeats; seat++ {
			botID := bot.SeatUserID(seat)
			events, err := state.App.Join(ctx, state.SessionID, botID)
			if err != nil {
				logger.Error("processBots: Failed to seat bot %s: %v", botID, err)
				continue
			}
			state.Bots[botID] = bot.NewAgent(botID)
			logger.Info("processBots: Added bot %s (%s)", bot.Username(botID), botID)
			for _, ev := range events {
				mh.broadcastEvent(state, dispatcher, logger, ev)
			}
			added = true
		}
		return added
	}

	// One pending bot action per pass keeps the pace human-like.
	for _, agent := range state.Bots {
		action, ok := agent.Act(session)
		if !ok {
			continue
		}
		if state.BotWaitUntil == 0 {
			delay := rand.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
			state.BotWaitUntil = state.Tick + int64(delay)
			return false
		}
		if state.Tick < state.BotWaitUntil {
			return false
		}
		state.BotWaitUntil = 0

		events, err := mh.applyBotAction(ctx, state, agent.UserID, action)
		if err != nil {
			logger.Error("processBots: Bot %s action %s failed: %v", agent.UserID, action.Kind, err)
			return false
		}
		for _, ev := range events {
			mh.broadcastEvent(state, dispatcher, logger, ev)
		}
		return true
	}
	return false
}

func (mh *matchHandler) applyBotAction(ctx context.Context, state *MatchState, userID string, action bot.Action) ([]app.Event, error) {
	sid := state.SessionID
	switch action.Kind {
	case bot.ActionDeal:
		return state.App.Deal(ctx, sid, userID)
	case bot.ActionOpen:
		return state.App.DeclareOpen(ctx, sid, userID)
	case bot.ActionRaise:
		return state.App.RaiseBet(ctx, sid, userID, action.Amount)
	case bot.ActionPass:
		return state.App.Pass(ctx, sid, userID)
	case bot.ActionCollect:
		return state.App.CollectBank(ctx, sid, userID)
	case bot.ActionDiscard:
		return nil, state.App.Discard(ctx, sid, userID, action.Card)
	case bot.ActionStart:
		return state.App.Start(ctx, sid, userID, action.Amount)
	case bot.ActionPlay:
		return state.App.PlayCard(ctx, sid, userID, action.Card)
	default:
		return nil, domain.NewRuleError("unknown bot action")
	}
}

// broadcastEvent converts an app event to a match message. Targeted events
// are only delivered to connected recipients and never fall back to a
// broadcast.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var opCode int64
	switch ev.Kind {
	case app.EventPlayerJoined:
		opCode = OpPlayerJoined
	case app.EventSessionReady:
		opCode = OpSessionReady
	case app.EventDealStarted:
		opCode = OpDealStarted
	case app.EventHandDealt:
		opCode = OpHandDealt
	case app.EventBetRaised:
		opCode = OpBetRaised
	case app.EventBetPassed:
		opCode = OpBetPassed
	case app.EventBankCollected:
		opCode = OpBankCollected
	case app.EventGameStarted:
		opCode = OpGameStarted
	case app.EventPlusTaken:
		opCode = OpPlusTaken
	case app.EventCardPlayed:
		opCode = OpCardPlayed
	case app.EventDealEnded:
		opCode = OpDealEnded
	case app.EventMatchFinished:
		opCode = OpMatchFinished
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	data, err := json.Marshal(ev.Payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		// Targeted but nobody connected (bots): drop rather than leak.
		if len(recipients) == 0 {
			return
		}
	}
	dispatcher.BroadcastMessage(opCode, data, recipients, nil, true)
}

// sendViews pushes each connected player their personal projection.
func (mh *matchHandler) sendViews(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	for userID := range state.Presences {
		mh.sendViewTo(ctx, state, dispatcher, logger, userID)
	}
}

func (mh *matchHandler) sendViewTo(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	presence, ok := state.Presences[userID]
	if !ok {
		return
	}
	view, err := state.App.View(ctx, state.SessionID, userID)
	if err != nil {
		logger.Warn("sendViewTo: No view for %s: %v", userID, err)
		return
	}
	data, err := json.Marshal(view)
	if err != nil {
		logger.Error("sendViewTo: Failed to marshal view: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpViewUpdate, data, []runtime.Presence{presence}, nil, true)
}

// sendError sends an error message to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	data, err := json.Marshal(errorMessage{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal error message: %v", err)
		return
	}
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}
	dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label := matchLabel{Open: domain.NumSeats, Game: "thousand", State: "lobby"}
	if session, err := state.App.Session(ctx, state.SessionID); err == nil {
		label.Open = domain.NumSeats - session.Joined
		switch session.State {
		case domain.StateFinish:
			label.State = "finished"
		case domain.StateHosted:
			label.State = "lobby"
		default:
			label.State = "playing"
		}
	}
	data, err := json.Marshal(label)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(data)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
