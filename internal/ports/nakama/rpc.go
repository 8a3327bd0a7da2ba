package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"github.com/Vycas/1000-online/internal/app/invite"
	"github.com/Vycas/1000-online/internal/config"
	"github.com/Vycas/1000-online/internal/domain"
)

const inviteIssuer = "thousand"

// HostSessionResponse is returned to a host creating a private table.
type HostSessionResponse struct {
	MatchID     string `json:"match_id"`
	InviteToken string `json:"invite_token"`
}

// JoinByInviteRequest carries the invite token from an invite link.
type JoinByInviteRequest struct {
	Token string `json:"token"`
}

// JoinByInviteResponse resolves an invite to the match to join.
type JoinByInviteResponse struct {
	MatchID    string `json:"match_id"`
	HostUserID string `json:"host_user_id"`
}

// QuickMatchResponse is the payload returned when requesting an open table.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// SessionHistoryRequest asks for the per-deal scores of a session.
type SessionHistoryRequest struct {
	SessionID string `json:"session_id"`
}

// SessionHistoryResponse lists the recorded deals, oldest first.
type SessionHistoryResponse struct {
	Records []domain.History `json:"records"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcHostSession, rpcHostSession); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcJoinByInvite, rpcJoinByInvite); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcSessionHistory, rpcSessionHistory)
}

func inviteService() *invite.Service {
	ttl := time.Duration(config.GetGameConfig().GetInviteTTL()) * time.Minute
	return invite.NewService(config.GetInviteSecret(), inviteIssuer, ttl)
}

// rpcHostSession creates a private match and hands the caller an invite
// token to share.
func rpcHostSession(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", fmt.Errorf("host_session requires an authenticated user")
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameThousand, map[string]interface{}{})
	if err != nil {
		logger.Error("rpcHostSession: MatchCreate error: %v", err)
		return "", err
	}

	token, err := inviteService().GenerateToken(matchID, userID)
	if err != nil {
		logger.Error("rpcHostSession: Failed to sign invite: %v", err)
		return "", err
	}

	resp := HostSessionResponse{MatchID: matchID, InviteToken: token}
	b, _ := json.Marshal(resp)
	return string(b), nil
}

// rpcJoinByInvite validates an invite token and returns the match behind it.
func rpcJoinByInvite(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var request JoinByInviteRequest
	if err := json.Unmarshal([]byte(payload), &request); err != nil {
		return "", fmt.Errorf("invalid payload: %w", err)
	}

	inv, err := inviteService().VerifyToken(request.Token)
	if err != nil {
		logger.Warn("rpcJoinByInvite: Rejected invite: %v", err)
		return "", err
	}

	resp := JoinByInviteResponse{MatchID: inv.SessionID, HostUserID: inv.HostUserID}
	b, _ := json.Marshal(resp)
	return string(b), nil
}

// rpcQuickMatch finds any open table or creates a fresh one.
func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	query := fmt.Sprintf("+label.%s:>=1 +label.game:thousand +label.state:lobby", MatchLabelKey_OpenSeats)

	limit := 10
	authoritative := true
	minSize := 1
	maxSize := domain.NumSeats - 1 // leave a seat for the caller

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("rpcQuickMatch: MatchList error: %v", err)
		return "", err
	}

	if len(matches) > 0 {
		resp := QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false}
		b, _ := json.Marshal(resp)
		return string(b), nil
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameThousand, map[string]interface{}{})
	if err != nil {
		logger.Error("rpcQuickMatch: MatchCreate error: %v", err)
		return "", err
	}

	resp := QuickMatchResponse{MatchID: matchID, IsNew: true}
	b, _ := json.Marshal(resp)
	return string(b), nil
}

// rpcSessionHistory returns the recorded deals of a session for the progress
// chart.
func rpcSessionHistory(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var request SessionHistoryRequest
	if err := json.Unmarshal([]byte(payload), &request); err != nil {
		return "", fmt.Errorf("invalid payload: %w", err)
	}
	if request.SessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}

	store := NewStorageStore(nk)
	records, err := store.ListHistory(ctx, request.SessionID)
	if err != nil {
		logger.Error("rpcSessionHistory: Failed to list history: %v", err)
		return "", err
	}

	resp := SessionHistoryResponse{Records: records}
	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
