package websocket

import (
	"context"
	stderrors "errors"
	"time"

	"codeberg.org/notecanvas/server/internal/bridge"
	"codeberg.org/notecanvas/server/internal/errors"
	"codeberg.org/notecanvas/server/internal/logger"
)

const handlerTimeout = 5 * time.Second

// replaces the session state with the client's whole AgentState.
// a stale base_version is accepted: the last write wins.
func StateReplaceHandler(resolve StoreResolver) MessageHandler {
	return func(_ *Hub, client *Client, msg *Message) error {
		if !client.checkReplaceRateLimit() {
			client.SendError(errors.CodeTooManyRequests, "too many state updates. maximum 10 per second.", "")
			return ErrRateLimitExceeded
		}

		var payload StateReplacePayload
		if err := msg.UnmarshalPayload(&payload); err != nil {
			client.SendError(errors.CodeValidationError, "failed to parse state", err.Error())
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()

		store, err := resolve(ctx, client.SessionID)
		if err != nil {
			client.SendError(errors.CodeSessionNotFound, "session not found", err.Error())
			return err
		}

		if current := store.Version(); payload.BaseVersion != 0 && payload.BaseVersion < current {
			logger.Debug("state replace from stale base",
				"session_id", client.SessionID,
				"client_id", client.ID,
				"base_version", payload.BaseVersion,
				"current_version", current,
			)
		}

		// the store's replace hook broadcasts the new snapshot to every client
		snap := store.Replace(payload.State)

		logger.Debug("state replaced",
			"session_id", client.SessionID,
			"client_id", client.ID,
			"version", snap.Version,
		)

		return nil
	}
}

// records a client's YES/NO for a pending action request
func ActionResponseHandler(b *bridge.Bridge) MessageHandler {
	return func(_ *Hub, client *Client, msg *Message) error {
		var payload ActionResponsePayload
		if err := msg.UnmarshalPayload(&payload); err != nil {
			client.SendError(errors.CodeValidationError, "failed to parse action response", err.Error())
			return err
		}

		decision, err := bridge.ParseDecision(string(payload.Decision))
		if err != nil {
			client.SendError(errors.CodeValidationError, "decision must be YES or NO", "")
			return err
		}

		req, _, ok := b.Get(payload.ID)
		if !ok || req.SessionID != client.SessionID {
			client.SendError(errors.CodeActionNotFound, "action request not found", "")
			return bridge.ErrUnknownRequest
		}

		if err := b.Respond(payload.ID, decision); err != nil {
			switch {
			case stderrors.Is(err, bridge.ErrAlreadyDecided), stderrors.Is(err, bridge.ErrRequestClosed):
				client.SendError(errors.CodeConflict, "action request is no longer available", "")
			default:
				client.SendError(errors.CodeServerError, "failed to record decision", err.Error())
			}

			return err
		}

		logger.Info("action decided",
			"session_id", client.SessionID,
			"client_id", client.ID,
			"request_id", payload.ID,
			"decision", decision,
		)

		return nil
	}
}

func PingHandler() MessageHandler {
	return func(_ *Hub, client *Client, _ *Message) error {
		msg, err := NewMessage(TypePong, client.SessionID, map[string]any{})
		if err != nil {
			return err
		}

		return client.Send(msg)
	}
}

// sends the current snapshot and every pending action request to a newly
// registered client, so a reconnecting canvas can still answer them
func SyncOnConnect(resolve StoreResolver, b *bridge.Bridge) func(client *Client) {
	return func(client *Client) {
		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()

		store, err := resolve(ctx, client.SessionID)
		if err != nil {
			client.SendError(errors.CodeSessionNotFound, "session not found", err.Error())
			return
		}

		snap := store.Snapshot()

		msg, err := NewMessage(TypeStateSnapshot, client.SessionID, StateSnapshotPayload{
			Version: snap.Version,
			State:   snap.State,
		})
		if err != nil {
			logger.ErrorErr(err, "failed to build snapshot message", "session_id", client.SessionID)
			return
		}

		if err := client.Send(msg); err != nil {
			return
		}

		if b == nil {
			return
		}

		for _, req := range b.Pending(client.SessionID) {
			msg, err := NewMessage(TypeActionRequest, client.SessionID, actionRequestPayload(req))
			if err != nil {
				continue
			}

			if err := client.Send(msg); err != nil {
				return
			}
		}
	}
}
