// Package session implements the negotiation state machine for one
// session: a pair of role-scoped content tables driven by a serialized
// processing queue. The session talks to the outside world through the
// Services interface, normally backed by a manager.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/atomic"

	"github.com/latentflip/jingle/base/log"
	"github.com/latentflip/jingle/base/util/copyutil"
	"github.com/latentflip/jingle/jingle"
)

var (
	// ErrSessionClosed reports a request submitted after Close.
	ErrSessionClosed = errors.New("session is closed")
	// ErrContentNotFound reports a lookup for a content the session does
	// not hold.
	ErrContentNotFound = errors.New("content not found")
)

// Services is what a session needs from its surroundings: capability
// construction and an outbound signaling path. A manager implements it.
type Services interface {
	CreateApplication(direction jingle.ContentDirection, desc jingle.ApplicationDescription) jingle.Application
	CreateTransport(desc jingle.TransportDescription) jingle.Transport
	Signal(ctx context.Context, to, from string, request jingle.Request) (jingle.Ack, error)
}

// localTarget names an existing content for a local action, plus the
// action-specific payload riding along with it.
type localTarget struct {
	creator jingle.SessionRole
	name    string

	senders         jingle.ContentSenders          // content-modify
	transport       jingle.Transport               // transport-replace
	applicationInfo jingle.ApplicationDescription  // description-info
	transportInfo   jingle.TransportDescription    // transport-info
}

// localRequest is the queue-internal shape of a locally originated action.
type localRequest struct {
	action  jingle.Action
	added   []*Content // content-add only
	targets []localTarget
	info    *jingle.Info
	reason  *jingle.Reason
}

// Session is one negotiation with one peer. Every request, local or
// remote, runs as a task on the session's processing queue; the exported
// methods submit tasks and wait for the acknowledgment.
type Session struct {
	services Services

	sid       string
	initiator string
	responder string
	role      jingle.SessionRole

	state atomic.Int32

	// contents is keyed by creator role then name. Mutated only by queue
	// tasks; the mutex lets tie-break admission read it without queuing
	// behind an initiate that is awaiting the peer.
	contentsMu sync.RWMutex
	contents   map[jingle.SessionRole]map[string]*Content

	queue  *processingQueue
	fields log.Fields
}

// New builds a session in the Starting state and spins up its queue.
func New(services Services, sid, initiator, responder string, role jingle.SessionRole, fields log.Fields) *Session {
	s := &Session{
		services:  services,
		sid:       sid,
		initiator: initiator,
		responder: responder,
		role:      role,
		contents: map[jingle.SessionRole]map[string]*Content{
			jingle.RoleInitiator: {},
			jingle.RoleResponder: {},
		},
		queue: newProcessingQueue(),
		fields: fields.WithPrefix("session").WithFields(log.Fields{
			"sid":  sid,
			"role": role,
		}),
	}
	s.fields.Debug("session created")
	return s
}

func (s *Session) SID() string             { return s.sid }
func (s *Session) Initiator() string       { return s.initiator }
func (s *Session) Responder() string       { return s.responder }
func (s *Session) Role() jingle.SessionRole { return s.role }

// Me is this participant's identifier.
func (s *Session) Me() string {
	if s.role == jingle.RoleInitiator {
		return s.initiator
	}
	return s.responder
}

// Peer is the other participant's identifier.
func (s *Session) Peer() string {
	if s.role == jingle.RoleInitiator {
		return s.responder
	}
	return s.initiator
}

// PeerRole is the other side's role.
func (s *Session) PeerRole() jingle.SessionRole {
	return s.role.Peer()
}

func (s *Session) State() jingle.SessionState {
	return jingle.SessionState(s.state.Load())
}

// SetState overrides the machine state without running any transition
// logic. Test harnesses use it to park the session in a known state.
func (s *Session) SetState(state jingle.SessionState) {
	s.state.Store(int32(state))
}

func (s *Session) setState(state jingle.SessionState) {
	s.state.Store(int32(state))
}

// Fields exposes the session's logging context.
func (s *Session) Fields() log.Fields {
	return s.fields
}

func (s *Session) String() string {
	return fmt.Sprintf("session[%s %s<->%s %s]", s.sid, s.initiator, s.responder, s.role)
}

// Close stops the processing queue. Queued work still runs; anything
// submitted afterwards fails with ErrSessionClosed.
func (s *Session) Close() {
	s.queue.close()
}

type ackResult struct {
	ack jingle.Ack
	err error
}

// ackReply delivers an acknowledgment exactly once; later calls are
// dropped. Remote tasks use the early call to acknowledge before their
// side effects finish.
type ackReply struct {
	ch   chan ackResult
	once sync.Once
}

func (r *ackReply) reply(ack jingle.Ack, err error) {
	r.once.Do(func() { r.ch <- ackResult{ack: ack, err: err} })
}

func (s *Session) submit(ctx context.Context, b band, fn func(reply func(jingle.Ack, error))) (jingle.Ack, error) {
	r := &ackReply{ch: make(chan ackResult, 1)}
	if !s.queue.push(b, func() { fn(r.reply) }) {
		return jingle.AckBadRequest, ErrSessionClosed
	}
	select {
	case res := <-r.ch:
		return res.ack, res.err
	case <-ctx.Done():
		return jingle.AckBadRequest, ctx.Err()
	}
}

// inspect runs fn on the queue at inspection priority and returns its
// result. The snapshot is consistent: no other task runs concurrently.
func inspect[T any](ctx context.Context, s *Session, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	var zero T
	ch := make(chan result, 1)
	if !s.queue.push(bandInspection, func() {
		v, err := fn()
		ch <- result{value: v, err: err}
	}) {
		return zero, ErrSessionClosed
	}
	select {
	case res := <-ch:
		return res.value, res.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// pushLocal enqueues a local request without waiting on its outcome. Used
// for autonomous follow-ups decided inside queue tasks.
func (s *Session) pushLocal(req localRequest) {
	s.queue.push(bandLocal, func() {
		s.executeLocalRequest(context.Background(), req, func(jingle.Ack, error) {})
	})
}

func (s *Session) endAsync(reason *jingle.Reason) {
	s.pushLocal(localRequest{action: jingle.SessionTerminate, reason: reason})
}

// Wait blocks until every task queued before it has run. Acks are always
// Ok; the error reports closure or context expiry.
func (s *Session) Wait(ctx context.Context) error {
	_, err := s.submit(ctx, bandWait, func(reply func(jingle.Ack, error)) {
		reply(jingle.AckOk, nil)
	})
	return err
}

// CreateContent builds a locally offered content. The creator is always
// this side's role.
func (s *Session) CreateContent(opts ContentOptions) *Content {
	opts.Creator = s.role
	return newContent(s, opts)
}

// Start offers the session to the peer with every pending content of
// session disposition.
func (s *Session) Start(ctx context.Context) (jingle.Ack, error) {
	return s.processLocal(ctx, localRequest{action: jingle.SessionInitiate})
}

// Accept answers an incoming session, answering every pending peer
// content along the way.
func (s *Session) Accept(ctx context.Context) (jingle.Ack, error) {
	return s.processLocal(ctx, localRequest{action: jingle.SessionAccept})
}

// End terminates the session. Safe to call repeatedly; on an already
// ended session it is an acknowledged no-op.
func (s *Session) End(ctx context.Context, reason *jingle.Reason) (jingle.Ack, error) {
	return s.processLocal(ctx, localRequest{action: jingle.SessionTerminate, reason: reason})
}

// SendInfo forwards an opaque session-info payload to the peer.
func (s *Session) SendInfo(ctx context.Context, info *jingle.Info) (jingle.Ack, error) {
	return s.processLocal(ctx, localRequest{action: jingle.SessionInfo, info: info})
}

// AddContent offers a locally created content. Before the session starts
// it only registers the content; the offer goes out with session-initiate.
func (s *Session) AddContent(ctx context.Context, content *Content) (jingle.Ack, error) {
	return s.processLocal(ctx, localRequest{action: jingle.ContentAdd, added: []*Content{content}})
}

// RemoveContent withdraws a content by name. An empty creator means this
// side's role.
func (s *Session) RemoveContent(ctx context.Context, creator jingle.SessionRole, name string, reason *jingle.Reason) (jingle.Ack, error) {
	if creator == "" {
		creator = s.role
	}
	return s.processLocal(ctx, localRequest{
		action:  jingle.ContentRemove,
		targets: []localTarget{{creator: creator, name: name}},
		reason:  reason,
	})
}

// Content looks up a content by creator and name.
func (s *Session) Content(ctx context.Context, creator jingle.SessionRole, name string) (*Content, error) {
	return inspect(ctx, s, func() (*Content, error) {
		if content := s.contents[creator][name]; content != nil {
			return content, nil
		}
		return nil, ErrContentNotFound
	})
}

// Stats snapshots the session and all of its contents.
func (s *Session) Stats(ctx context.Context) (jingle.SessionStats, error) {
	return inspect(ctx, s, func() (jingle.SessionStats, error) {
		stats := jingle.SessionStats{State: s.State()}
		s.forAllContent(func(c *Content) {
			stats.Contents = append(stats.Contents, c.stats(ctx))
		})
		return stats, nil
	})
}

// Equivalent reports whether the incoming session-initiate describes the
// same thing this session is currently offering. True only while our own
// session-initiate is unacknowledged; managers use it to detect glare.
//
// It deliberately bypasses the processing queue: while two peers offer
// each other equivalent sessions, both queues are occupied by their own
// initiate awaiting the other side's ack, and a queued query here would
// deadlock admission on both ends.
func (s *Session) Equivalent(request jingle.Request) bool {
	if s.State() != jingle.SessionUnacked {
		return false
	}
	s.contentsMu.RLock()
	defer s.contentsMu.RUnlock()
	matches := lo.PickBy(s.contents[s.role], func(_ string, c *Content) bool {
		return c.State() == jingle.ContentUnacked && c.equivalent(request.Contents)
	})
	return len(matches) > 0
}

// ProcessRequest feeds a remote request into the session and resolves
// with the acknowledgment the peer should receive.
func (s *Session) ProcessRequest(ctx context.Context, request jingle.Request) (jingle.Ack, error) {
	return s.submit(ctx, bandRemote, func(reply func(jingle.Ack, error)) {
		s.executeRemoteRequest(ctx, request, reply)
	})
}

func (s *Session) processLocal(ctx context.Context, req localRequest) (jingle.Ack, error) {
	return s.submit(ctx, bandLocal, func(reply func(jingle.Ack, error)) {
		s.executeLocalRequest(ctx, req, reply)
	})
}

func (s *Session) commitContents(accepted []*Content) {
	s.contentsMu.Lock()
	defer s.contentsMu.Unlock()
	for _, content := range accepted {
		s.contents[content.creator][content.name] = content
	}
}

func (s *Session) evictContent(creator jingle.SessionRole, name string) {
	s.contentsMu.Lock()
	defer s.contentsMu.Unlock()
	delete(s.contents[creator], name)
}

func (s *Session) forAllContent(fn func(*Content)) {
	for _, byName := range []map[string]*Content{s.contents[s.role], s.contents[s.role.Peer()]} {
		for _, content := range byName {
			fn(content)
		}
	}
}

func (s *Session) anyLiveContent() bool {
	live := false
	s.forAllContent(func(c *Content) {
		if c.Live() {
			live = true
		}
	})
	return live
}

func (s *Session) createApplication(c *Content, desc jingle.ApplicationDescription) jingle.Application {
	if desc == nil {
		return nil
	}
	return s.services.CreateApplication(c.Direction(), desc)
}

func (s *Session) createTransport(desc jingle.TransportDescription) jingle.Transport {
	if desc == nil {
		return nil
	}
	return s.services.CreateTransport(desc)
}

// sendRequest stamps the session id on the request and hands a private
// copy to the signal layer.
func (s *Session) sendRequest(ctx context.Context, request jingle.Request) (jingle.Ack, error) {
	request.SID = s.sid
	s.fields.WithFields(log.Fields{"action": request.Action}).Debug("sending request")
	return s.services.Signal(ctx, s.Peer(), s.Me(), copyutil.DeepCopy(request))
}

// inParallel runs the given capability calls side by side, waits for all
// of them and returns the first error in argument order.
func inParallel(fns ...func() error) error {
	var wg sync.WaitGroup
	errs := make([]error, len(fns))
	for i, fn := range fns {
		wg.Add(1)
		go func(i int, fn func() error) {
			defer wg.Done()
			errs[i] = fn()
		}(i, fn)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// executeRemoteRequest validates a peer request, commits accepted new
// contents, acknowledges, and only then runs the side effects. The early
// acknowledgment means validation alone decides the answer.
func (s *Session) executeRemoteRequest(ctx context.Context, request jingle.Request, reply func(jingle.Ack, error)) {
	contentAction := request.Action.ContentAction()
	amInitiator := s.role == jingle.RoleInitiator
	state := s.State()

	if request.Action == jingle.SessionInitiate && (amInitiator || state != jingle.SessionStarting) {
		reply(jingle.AckOutOfOrder, nil)
		return
	}
	if request.Action == jingle.SessionAccept && (!amInitiator || state != jingle.SessionPending) {
		reply(jingle.AckOutOfOrder, nil)
		return
	}
	if request.Action.RequiresContent() && len(request.Contents) == 0 {
		reply(jingle.AckBadRequest, nil)
		return
	}
	if amInitiator && contentAction == jingle.ContentAdd {
		glare := lo.PickBy(s.contents[s.role], func(_ string, c *Content) bool {
			return c.State() == jingle.ContentUnacked && c.equivalent(request.Contents)
		})
		if len(glare) > 0 {
			s.fields.Debug("tie-break: rejecting colliding content offer")
			reply(jingle.AckTieBreak, nil)
			return
		}
	}

	results := make([]jingle.Ack, 0, len(request.Contents))
	var accepted []*Content
	for _, rc := range request.Contents {
		if contentAction == jingle.ContentAdd {
			content := newContent(s, ContentOptions{
				Creator:     s.PeerRole(),
				Name:        rc.Name,
				Senders:     rc.Senders,
				Disposition: rc.Disposition,
			})
			ack := content.validateRemote(contentAction, rc)
			if ack == jingle.AckOk {
				accepted = append(accepted, content)
			}
			results = append(results, ack)
			continue
		}
		if content := s.contents[rc.Creator][rc.Name]; content != nil {
			results = append(results, content.validateRemote(contentAction, rc))
		} else {
			results = append(results, jingle.AckBadRequest)
		}
	}

	if ack := jingle.ReduceAcks(results); ack != jingle.AckOk {
		s.fields.WithFields(log.Fields{"action": request.Action, "ack": ack}).Debug("rejecting remote request")
		reply(ack, nil)
		return
	}

	s.commitContents(accepted)

	// acknowledged; everything after this is this side's own business
	reply(jingle.AckOk, nil)

	switch request.Action {
	case jingle.SessionInitiate:
		s.setState(jingle.SessionPending)
	case jingle.SessionAccept:
		s.setState(jingle.SessionActive)
	case jingle.SessionTerminate:
		s.setState(jingle.SessionEnded)
		var wg sync.WaitGroup
		s.forAllContent(func(c *Content) {
			wg.Add(1)
			go func(c *Content) {
				defer wg.Done()
				_ = c.executeRemote(ctx, contentAction, jingle.RequestContent{Creator: c.creator, Name: c.name})
			}(c)
		})
		wg.Wait()
		s.remoteCleanup(contentAction, request)
		return
	}

	var wg sync.WaitGroup
	for _, rc := range request.Contents {
		content := s.contents[rc.Creator][rc.Name]
		if content == nil {
			continue
		}
		wg.Add(1)
		go func(content *Content, rc jingle.RequestContent) {
			defer wg.Done()
			if err := content.executeRemote(ctx, contentAction, rc); err != nil {
				s.fields.WithFields(log.Fields{
					"action":  contentAction,
					"content": rc.Name,
				}).Warn("remote content action failed: %v", err)
			}
		}(content, rc)
	}
	wg.Wait()
	s.remoteCleanup(contentAction, request)
}

// remoteCleanup evicts removed contents and, once nothing live remains,
// schedules an autonomous successful teardown.
func (s *Session) remoteCleanup(contentAction jingle.Action, request jingle.Request) {
	if contentAction == jingle.ContentRemove {
		for _, rc := range request.Contents {
			s.evictContent(rc.Creator, rc.Name)
		}
	}
	if !s.anyLiveContent() {
		s.endAsync(&jingle.Reason{Condition: jingle.ReasonSuccess})
	}
}

// executeLocalRequest validates and runs a locally originated request.
// The reply resolves once the peer has acknowledged, or sooner when no
// request needs to go out.
func (s *Session) executeLocalRequest(ctx context.Context, req localRequest, reply func(jingle.Ack, error)) {
	contentAction := req.action.ContentAction()
	amInitiator := s.role == jingle.RoleInitiator
	state := s.State()

	if req.action == jingle.SessionInitiate && !amInitiator && state != jingle.SessionStarting {
		reply(jingle.AckOutOfOrder, nil)
		return
	}
	if req.action == jingle.SessionAccept && amInitiator && state == jingle.SessionPending {
		reply(jingle.AckOutOfOrder, nil)
		return
	}
	if req.action == jingle.SessionTerminate && state == jingle.SessionEnded {
		reply(jingle.AckOk, nil)
		return
	}

	results := make([]jingle.Ack, 0, len(req.added)+len(req.targets))
	var accepted []*Content
	if contentAction == jingle.ContentAdd {
		for _, content := range req.added {
			ack := content.validateLocalAdd()
			if ack == jingle.AckOk {
				accepted = append(accepted, content)
			}
			results = append(results, ack)
		}
	} else {
		for _, target := range req.targets {
			if content := s.contents[target.creator][target.name]; content != nil {
				results = append(results, content.validateLocal(contentAction, target))
			} else {
				results = append(results, jingle.AckBadRequest)
			}
		}
	}

	if ack := jingle.ReduceAcks(results); ack != jingle.AckOk {
		s.fields.WithFields(log.Fields{"action": req.action, "ack": ack}).Debug("rejecting local request")
		reply(ack, nil)
		return
	}

	s.commitContents(accepted)

	switch req.action {
	case jingle.SessionInitiate:
		s.executeLocalSessionInitiate(ctx, req, reply)
	case jingle.SessionAccept:
		s.executeLocalSessionAccept(ctx, req, reply)
	case jingle.SessionTerminate:
		s.executeLocalSessionTerminate(ctx, req, reply)
	default:
		s.executeLocalContentAction(ctx, req, accepted, reply)
	}
}

// runLocalContentActions executes a content action across the given
// contents side by side and collects the wire payloads in input order.
func (s *Session) runLocalContentActions(ctx context.Context, action jingle.Action, contents []*Content, targets []localTarget) ([]jingle.RequestContent, error) {
	payloads := make([]jingle.RequestContent, len(contents))
	errs := make([]error, len(contents))
	var wg sync.WaitGroup
	for i := range contents {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payloads[i], errs[i] = contents[i].executeLocal(ctx, action, targets[i])
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return payloads, nil
}

func (s *Session) executeLocalSessionInitiate(ctx context.Context, req localRequest, reply func(jingle.Ack, error)) {
	s.setState(jingle.SessionUnacked)

	var offered []*Content
	for _, content := range s.contents[s.role] {
		if content.State() == jingle.ContentStarting && content.disposition == jingle.DispositionSession {
			offered = append(offered, content)
		}
	}
	if len(offered) == 0 {
		reply(jingle.AckBadRequest, nil)
		return
	}

	targets := make([]localTarget, len(offered))
	for i, content := range offered {
		targets[i] = content.target()
	}
	offers, err := s.runLocalContentActions(ctx, jingle.ContentAdd, offered, targets)
	if err != nil {
		reply(jingle.AckBadRequest, err)
		return
	}

	ack, err := s.sendRequest(ctx, jingle.Request{
		Action:    req.action,
		Initiator: s.initiator,
		Contents:  offers,
	})
	if err != nil {
		reply(jingle.AckBadRequest, err)
		return
	}
	if ack != jingle.AckOk {
		reply(ack, nil)
		return
	}

	s.setState(jingle.SessionPending)
	for _, content := range offered {
		content.setState(jingle.ContentPending)
	}
	reply(jingle.AckOk, nil)
}

func (s *Session) executeLocalSessionAccept(ctx context.Context, req localRequest, reply func(jingle.Ack, error)) {
	var answered []*Content
	for _, content := range s.contents[s.PeerRole()] {
		// early-session contents settle on their own; the answer only
		// covers what the session itself is negotiating
		if content.State() == jingle.ContentPending && content.disposition == jingle.DispositionSession {
			answered = append(answered, content)
		}
	}
	if len(answered) == 0 {
		reply(jingle.AckBadRequest, nil)
		return
	}

	targets := make([]localTarget, len(answered))
	for i, content := range answered {
		targets[i] = content.target()
	}
	answers, err := s.runLocalContentActions(ctx, jingle.ContentAccept, answered, targets)
	if err != nil {
		reply(jingle.AckBadRequest, err)
		return
	}

	ack, err := s.sendRequest(ctx, jingle.Request{
		Action:    req.action,
		Responder: s.responder,
		Contents:  answers,
	})
	if err != nil {
		reply(jingle.AckBadRequest, err)
		return
	}
	if ack != jingle.AckOk {
		reply(ack, nil)
		return
	}

	s.setState(jingle.SessionActive)
	for _, content := range answered {
		content.setState(jingle.ContentActive)
	}
	reply(jingle.AckOk, nil)
}

// executeLocalSessionTerminate tears everything down. It always resolves
// Ok; a failed or rejected send does not keep a session alive.
func (s *Session) executeLocalSessionTerminate(ctx context.Context, req localRequest, reply func(jingle.Ack, error)) {
	var all []*Content
	s.forAllContent(func(c *Content) { all = append(all, c) })
	targets := make([]localTarget, len(all))
	for i, content := range all {
		targets[i] = content.target()
	}
	_, _ = s.runLocalContentActions(ctx, jingle.ContentRemove, all, targets)

	if s.State() != jingle.SessionEnded {
		s.setState(jingle.SessionEnded)
		if _, err := s.sendRequest(ctx, jingle.Request{Action: req.action, Reason: req.reason}); err != nil {
			s.fields.Warn("terminate send failed: %v", err)
		}
	}
	reply(jingle.AckOk, nil)
}

func (s *Session) executeLocalContentAction(ctx context.Context, req localRequest, accepted []*Content, reply func(jingle.Ack, error)) {
	contentAction := req.action.ContentAction()

	var contents []*Content
	var targets []localTarget
	if contentAction == jingle.ContentAdd {
		contents = accepted
		targets = make([]localTarget, len(contents))
		for i, content := range contents {
			targets[i] = content.target()
		}
	} else {
		for _, target := range req.targets {
			contents = append(contents, s.contents[target.creator][target.name])
			targets = append(targets, target)
		}
	}

	payloads, err := s.runLocalContentActions(ctx, contentAction, contents, targets)
	if err != nil {
		reply(jingle.AckBadRequest, err)
		return
	}

	switch req.action {
	case jingle.ContentAdd:
		// session not started yet: the offer rides on session-initiate
		if s.State() == jingle.SessionStarting {
			reply(jingle.AckOk, nil)
			return
		}
		ack, err := s.sendRequest(ctx, jingle.Request{Action: req.action, Contents: payloads})
		if err != nil {
			reply(jingle.AckBadRequest, err)
			return
		}
		if ack == jingle.AckOk {
			for _, content := range contents {
				content.setState(jingle.ContentPending)
			}
		}
		reply(ack, nil)

	case jingle.ContentRemove:
		for _, payload := range payloads {
			s.evictContent(payload.Creator, payload.Name)
		}
		if s.State() == jingle.SessionStarting {
			reply(jingle.AckOk, nil)
			return
		}
		ack, err := s.sendRequest(ctx, jingle.Request{Action: req.action, Contents: payloads, Reason: req.reason})
		if err != nil {
			reply(jingle.AckBadRequest, err)
			return
		}
		reply(ack, nil)
		s.localCleanup()

	case jingle.ContentAccept:
		ack, err := s.sendRequest(ctx, jingle.Request{Action: req.action, Contents: payloads})
		if err != nil {
			reply(jingle.AckBadRequest, err)
			return
		}
		if ack == jingle.AckOk {
			for _, content := range contents {
				content.setState(jingle.ContentActive)
			}
		}
		reply(ack, nil)

	default:
		ack, err := s.sendRequest(ctx, jingle.Request{
			Action:   req.action,
			Contents: payloads,
			Info:     req.info,
			Reason:   req.reason,
		})
		if err != nil {
			reply(jingle.AckBadRequest, err)
			return
		}
		reply(ack, nil)
	}
}

// localCleanup mirrors remoteCleanup for locally driven removals.
func (s *Session) localCleanup() {
	if !s.anyLiveContent() && s.State() != jingle.SessionEnded {
		s.endAsync(&jingle.Reason{Condition: jingle.ReasonSuccess})
	}
}
