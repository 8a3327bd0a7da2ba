package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Vycas/1000-online/internal/domain"
	"github.com/Vycas/1000-online/internal/ports"
)

// Service contains Thousand use-cases operating on stored session state.
// Every action loads the session through the store's serialized Update,
// resolves the caller's seat and applies the matching domain operation.
type Service struct {
	store ports.SessionStore
	rules domain.Rules

	mu  sync.Mutex // guards rng
	rng *rand.Rand
	now func() time.Time
}

// NewService constructs a Service with the provided rng or a time-seeded
// default.
func NewService(store ports.SessionStore, rules domain.Rules, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{store: store, rules: rules, rng: rng, now: time.Now}
}

// Host creates a new session hosted by the given user.
func (s *Service) Host(ctx context.Context, userID string) (*domain.Session, error) {
	return s.HostSession(ctx, uuid.NewString(), userID)
}

// HostSession creates a new session under a caller-chosen ID, used when the
// session is bound to an existing match.
func (s *Service) HostSession(ctx context.Context, sessionID, userID string) (*domain.Session, error) {
	session := domain.NewSession(s.rules, userID)
	session.ID = sessionID
	session.CreatedAt = s.now()
	if err := s.store.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Join seats the user in the session. Joining a session the user already
// sits in is a no-op, so reconnects are safe.
func (s *Service) Join(ctx context.Context, sessionID, userID string) ([]Event, error) {
	var events []Event
	err := s.store.Update(ctx, sessionID, func(session *domain.Session) error {
		if _, err := session.SeatOf(userID); err == nil {
			return nil
		}
		seat, err := session.Join(userID)
		if err != nil {
			return err
		}
		events = append(events, Event{
			Kind:    EventPlayerJoined,
			Payload: PlayerJoinedPayload{UserID: userID, Seat: int(seat)},
		})
		if session.IsFull() {
			events = append(events, Event{Kind: EventSessionReady})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Deal shuffles a fresh deck and deals the next hand. Hands are delivered
// face down; a player sees their cards only after declaring open.
func (s *Service) Deal(ctx context.Context, sessionID, userID string) ([]Event, error) {
	deck := domain.NewDeck()
	s.mu.Lock()
	s.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	s.mu.Unlock()

	var events []Event
	err := s.store.Update(ctx, sessionID, func(session *domain.Session) error {
		seat, err := session.SeatOf(userID)
		if err != nil {
			return err
		}
		if err := session.Deal(seat, deck); err != nil {
			return err
		}
		events = append(events, Event{
			Kind:    EventDealStarted,
			Payload: DealStartedPayload{DealerUserID: userID},
		})
		for i := 0; i < domain.NumSeats; i++ {
			p := session.PlayerAt(domain.Seat(i))
			events = append(events, Event{
				Kind:       EventHandDealt,
				Payload:    HandDealtPayload{UserID: p.UserID, Hand: cardBacks(len(p.Hand))},
				Recipients: []string{p.UserID},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// DeclareBlind commits the user to playing the deal blind.
func (s *Service) DeclareBlind(ctx context.Context, sessionID, userID string) error {
	return s.store.Update(ctx, sessionID, func(session *domain.Session) error {
		seat, err := session.SeatOf(userID)
		if err != nil {
			return err
		}
		return session.PlayerAt(seat).GoBlind()
	})
}

// DeclareOpen commits the user to playing open and reveals their hand to
// them.
func (s *Service) DeclareOpen(ctx context.Context, sessionID, userID string) ([]Event, error) {
	var events []Event
	err := s.store.Update(ctx, sessionID, func(session *domain.Session) error {
		seat, err := session.SeatOf(userID)
		if err != nil {
			return err
		}
		player := session.PlayerAt(seat)
		player.GoOpen()
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{UserID: userID, Hand: sortedCodes(player.Hand)},
			Recipients: []string{userID},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// RaiseBet raises the user's bid.
func (s *Service) RaiseBet(ctx context.Context, sessionID, userID string, bid int) ([]Event, error) {
	var events []Event
	err := s.store.Update(ctx, sessionID, func(session *domain.Session) error {
		seat, err := session.SeatOf(userID)
		if err != nil {
			return err
		}
		if err := session.RaiseBet(seat, bid); err != nil {
			return err
		}
		events = append(events, Event{
			Kind: EventBetRaised,
			Payload: BetRaisedPayload{
				UserID:         userID,
				Bid:            bid,
				NextTurnUserID: session.PlayerAt(session.Turn).UserID,
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Pass passes the bidding.
func (s *Service) Pass(ctx context.Context, sessionID, userID string) ([]Event, error) {
	var events []Event
	err := s.store.Update(ctx, sessionID, func(session *domain.Session) error {
		seat, err := session.SeatOf(userID)
		if err != nil {
			return err
		}
		if err := session.MakePass(seat); err != nil {
			return err
		}
		events = append(events, Event{
			Kind: EventBetPassed,
			Payload: BetPassedPayload{
				UserID:         userID,
				NextTurnUserID: session.PlayerAt(session.Turn).UserID,
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// CollectBank moves the bank into the bidding winner's hand.
func (s *Service) CollectBank(ctx context.Context, sessionID, userID string) ([]Event, error) {
	var events []Event
	err := s.store.Update(ctx, sessionID, func(session *domain.Session) error {
		seat, err := session.SeatOf(userID)
		if err != nil {
			return err
		}
		if err := session.CollectBank(seat); err != nil {
			return err
		}
		events = append(events, Event{
			Kind:    EventBankCollected,
			Payload: BankCollectedPayload{UserID: userID},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Discard moves a card from the user's hand back to the bank.
func (s *Service) Discard(ctx context.Context, sessionID, userID, card string) error {
	c, err := domain.ParseCard(card)
	if err != nil {
		return err
	}
	return s.store.Update(ctx, sessionID, func(session *domain.Session) error {
		seat, err := session.SeatOf(userID)
		if err != nil {
			return err
		}
		return session.DiscardCard(seat, c)
	})
}

// Retrieve takes a discarded card back from the bank.
func (s *Service) Retrieve(ctx context.Context, sessionID, userID, card string) error {
	c, err := domain.ParseCard(card)
	if err != nil {
		return err
	}
	return s.store.Update(ctx, sessionID, func(session *domain.Session) error {
		seat, err := session.SeatOf(userID)
		if err != nil {
			return err
		}
		return session.RetrieveCard(seat, c)
	})
}

// Start commits the final bet and begins trick play.
func (s *Service) Start(ctx context.Context, sessionID, userID string, finalBid int) ([]Event, error) {
	var events []Event
	err := s.store.Update(ctx, sessionID, func(session *domain.Session) error {
		seat, err := session.SeatOf(userID)
		if err != nil {
			return err
		}
		if err := session.Start(seat, finalBid); err != nil {
			return err
		}
		events = append(events, Event{
			Kind:    EventGameStarted,
			Payload: GameStartedPayload{UserID: userID, Bid: session.Bid, Blind: session.Blind},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// TakePlus forfeits the deal after seeing the talon.
func (s *Service) TakePlus(ctx context.Context, sessionID, userID string) ([]Event, error) {
	var events []Event
	var record *domain.History
	err := s.store.Update(ctx, sessionID, func(session *domain.Session) error {
		seat, err := session.SeatOf(userID)
		if err != nil {
			return err
		}
		if err := session.TakePlus(seat); err != nil {
			return err
		}
		events = append(events, Event{
			Kind:    EventPlusTaken,
			Payload: PlusTakenPayload{UserID: userID},
		})
		events = append(events, s.dealEnded(session, &record)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if record != nil {
		if err := s.store.AppendHistory(ctx, *record); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// PlayCard plays a card into the current trick.
func (s *Service) PlayCard(ctx context.Context, sessionID, userID, card string) ([]Event, error) {
	c, err := domain.ParseCard(card)
	if err != nil {
		return nil, err
	}
	var events []Event
	var record *domain.History
	err = s.store.Update(ctx, sessionID, func(session *domain.Session) error {
		seat, err := session.SeatOf(userID)
		if err != nil {
			return err
		}
		if err := session.PutCard(seat, c); err != nil {
			return err
		}
		events = append(events, Event{
			Kind: EventCardPlayed,
			Payload: CardPlayedPayload{
				UserID:         userID,
				Card:           card,
				NextTurnUserID: session.PlayerAt(session.Turn).UserID,
			},
		})
		events = append(events, s.dealEnded(session, &record)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if record != nil {
		if err := s.store.AppendHistory(ctx, *record); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// dealEnded emits the closing events when the session just left trick play,
// capturing a history record for the caller to persist.
func (s *Service) dealEnded(session *domain.Session, record **domain.History) []Event {
	if session.State != domain.StateEndGame && session.State != domain.StateFinish {
		return nil
	}
	now := s.now()
	h := domain.NewHistory(session, now)
	*record = &h

	scores := session.Scores()
	events := []Event{{
		Kind:    EventDealEnded,
		Payload: DealEndedPayload{Info: session.Info, Scores: scores[:]},
	}}
	if session.State == domain.StateFinish {
		session.FinishedAt = &now
		winnerID := ""
		for i := 0; i < domain.NumSeats; i++ {
			p := session.PlayerAt(domain.Seat(i))
			if p.Score >= session.Rules.TargetScore {
				winnerID = p.UserID
				break
			}
		}
		events = append(events, Event{
			Kind:    EventMatchFinished,
			Payload: MatchFinishedPayload{WinnerUserID: winnerID, Scores: scores[:]},
		})
	}
	return events
}

// View projects the session into what the given user may see.
func (s *Service) View(ctx context.Context, sessionID, userID string) (*View, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	seat, err := session.SeatOf(userID)
	if err != nil {
		return nil, err
	}
	return BuildView(session, seat), nil
}

// Session returns a snapshot of the session.
func (s *Service) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.store.Get(ctx, sessionID)
}

// History returns the per-deal score snapshots of a session, oldest first.
func (s *Service) History(ctx context.Context, sessionID string) ([]domain.History, error) {
	return s.store.ListHistory(ctx, sessionID)
}
