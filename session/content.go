package session

import (
	"context"

	"go.uber.org/atomic"

	"github.com/latentflip/jingle/jingle"
)

// validActions is the per-content-state legality table consulted before
// any action-specific refinement. A missing entry means BadRequest.
var validActions = map[jingle.ContentState]map[jingle.Action]jingle.Ack{
	jingle.ContentStarting: {
		jingle.ContentAdd: jingle.AckOk,
	},
	jingle.ContentUnacked: {
		jingle.ContentAdd:       jingle.AckOutOfOrder,
		jingle.ContentAccept:    jingle.AckOutOfOrder,
		jingle.ContentModify:    jingle.AckOutOfOrder,
		jingle.ContentReject:    jingle.AckOutOfOrder,
		jingle.ContentRemove:    jingle.AckOutOfOrder,
		jingle.DescriptionInfo:  jingle.AckOutOfOrder,
		jingle.TransportAccept:  jingle.AckOutOfOrder,
		jingle.TransportInfo:    jingle.AckOutOfOrder,
		jingle.TransportReject:  jingle.AckOutOfOrder,
		jingle.TransportReplace: jingle.AckOutOfOrder,
	},
	jingle.ContentPending: {
		jingle.ContentAdd:       jingle.AckOutOfOrder,
		jingle.ContentAccept:    jingle.AckOk,
		jingle.ContentModify:    jingle.AckOk,
		jingle.ContentReject:    jingle.AckOk,
		jingle.ContentRemove:    jingle.AckOk,
		jingle.DescriptionInfo:  jingle.AckOk,
		jingle.TransportAccept:  jingle.AckOk,
		jingle.TransportInfo:    jingle.AckOk,
		jingle.TransportReject:  jingle.AckOk,
		jingle.TransportReplace: jingle.AckOk,
	},
	jingle.ContentActive: {
		jingle.ContentAdd:       jingle.AckOutOfOrder,
		jingle.ContentAccept:    jingle.AckOutOfOrder,
		jingle.ContentModify:    jingle.AckOk,
		jingle.ContentReject:    jingle.AckOutOfOrder,
		jingle.ContentRemove:    jingle.AckOk,
		jingle.DescriptionInfo:  jingle.AckOk,
		jingle.TransportAccept:  jingle.AckOk,
		jingle.TransportInfo:    jingle.AckOk,
		jingle.TransportReject:  jingle.AckOk,
		jingle.TransportReplace: jingle.AckOk,
	},
	jingle.ContentRejected: {},
	jingle.ContentRemoved:  {},
}

// ContentOptions names a content and carries the negotiation material for
// a locally created one.
type ContentOptions struct {
	Creator     jingle.SessionRole
	Name        string
	Senders     jingle.ContentSenders
	Disposition string
	Application jingle.Application
	Transport   jingle.Transport
}

// Content is one negotiated stream inside a session. All mutation happens
// on the owning session's processing queue; the state cell is atomic so
// that callers outside the queue can observe progress.
type Content struct {
	session *Session

	creator     jingle.SessionRole
	name        string
	disposition string
	senders     jingle.ContentSenders

	state atomic.Int32

	application          jingle.Application
	transport            jingle.Transport
	replacementTransport jingle.Transport

	// performTieBreaks marks the side that resolves glare on this content.
	performTieBreaks     bool
	unackedSendersChange jingle.ContentSenders
}

func newContent(s *Session, opts ContentOptions) *Content {
	senders := opts.Senders
	if senders == "" {
		senders = jingle.SendersBoth
	}
	disposition := opts.Disposition
	if disposition == "" {
		disposition = jingle.DispositionSession
	}
	c := &Content{
		session:          s,
		creator:          opts.Creator,
		name:             opts.Name,
		disposition:      disposition,
		senders:          senders,
		application:      opts.Application,
		transport:        opts.Transport,
		performTieBreaks: s.role == jingle.RoleInitiator,
	}
	c.state.Store(int32(jingle.ContentStarting))
	return c
}

func (c *Content) Creator() jingle.SessionRole { return c.creator }
func (c *Content) Name() string                { return c.name }
func (c *Content) Disposition() string         { return c.disposition }

func (c *Content) Senders() jingle.ContentSenders { return c.senders }

func (c *Content) State() jingle.ContentState {
	return jingle.ContentState(c.state.Load())
}

// SetState overrides the machine state without running any transition
// logic. Test harnesses use it to park a content in a known state.
func (c *Content) SetState(state jingle.ContentState) {
	c.state.Store(int32(state))
}

func (c *Content) setState(state jingle.ContentState) {
	c.state.Store(int32(state))
}

// Live reports whether the content still takes part in negotiation.
func (c *Content) Live() bool { return c.State().Live() }

// Direction is the local send/receive orientation implied by the senders
// value and the session role.
func (c *Content) Direction() jingle.ContentDirection {
	return jingle.DirectionFor(c.senders, c.session.role)
}

// Application exposes the negotiated application. Read it from the
// session's processing queue, or after negotiation has settled.
func (c *Content) Application() jingle.Application { return c.application }

// Transport exposes the negotiated transport under the same caveat as
// Application.
func (c *Content) Transport() jingle.Transport { return c.transport }

// Start offers this content to the peer, a shorthand for AddContent on
// the owning session.
func (c *Content) Start(ctx context.Context) (jingle.Ack, error) {
	return c.session.AddContent(ctx, c)
}

// Accept answers a pending peer-created content.
func (c *Content) Accept(ctx context.Context) (jingle.Ack, error) {
	return c.session.processLocal(ctx, localRequest{
		action:  jingle.ContentAccept,
		targets: []localTarget{c.target()},
	})
}

// Reject declines a pending peer-created content.
func (c *Content) Reject(ctx context.Context) (jingle.Ack, error) {
	return c.session.processLocal(ctx, localRequest{
		action:  jingle.ContentReject,
		targets: []localTarget{c.target()},
	})
}

// End removes the content from the session, optionally naming a reason.
func (c *Content) End(ctx context.Context, reason *jingle.Reason) (jingle.Ack, error) {
	return c.session.processLocal(ctx, localRequest{
		action:  jingle.ContentRemove,
		targets: []localTarget{c.target()},
		reason:  reason,
	})
}

// ModifySenders renegotiates the senders value and with it the media
// direction.
func (c *Content) ModifySenders(ctx context.Context, senders jingle.ContentSenders) (jingle.Ack, error) {
	t := c.target()
	t.senders = senders
	return c.session.processLocal(ctx, localRequest{
		action:  jingle.ContentModify,
		targets: []localTarget{t},
	})
}

// ReplaceTransport proposes swapping the running transport for a new one.
func (c *Content) ReplaceTransport(ctx context.Context, transport jingle.Transport) (jingle.Ack, error) {
	t := c.target()
	t.transport = transport
	return c.session.processLocal(ctx, localRequest{
		action:  jingle.TransportReplace,
		targets: []localTarget{t},
	})
}

// AcceptTransport adopts the peer's proposed replacement transport.
func (c *Content) AcceptTransport(ctx context.Context) (jingle.Ack, error) {
	return c.session.processLocal(ctx, localRequest{
		action:  jingle.TransportAccept,
		targets: []localTarget{c.target()},
	})
}

// RejectTransport declines the peer's proposed replacement transport.
func (c *Content) RejectTransport(ctx context.Context) (jingle.Ack, error) {
	return c.session.processLocal(ctx, localRequest{
		action:  jingle.TransportReject,
		targets: []localTarget{c.target()},
	})
}

// SendDescriptionInfo forwards an application payload without touching
// negotiation state.
func (c *Content) SendDescriptionInfo(ctx context.Context, info jingle.ApplicationDescription) (jingle.Ack, error) {
	t := c.target()
	t.applicationInfo = info
	return c.session.processLocal(ctx, localRequest{
		action:  jingle.DescriptionInfo,
		targets: []localTarget{t},
	})
}

// SendTransportInfo forwards a transport payload, typically trickled
// candidates.
func (c *Content) SendTransportInfo(ctx context.Context, info jingle.TransportDescription) (jingle.Ack, error) {
	t := c.target()
	t.transportInfo = info
	return c.session.processLocal(ctx, localRequest{
		action:  jingle.TransportInfo,
		targets: []localTarget{t},
	})
}

func (c *Content) target() localTarget {
	return localTarget{creator: c.creator, name: c.name}
}

// equivalent reports whether any of the offered request contents describes
// the same thing as this content, as judged by the application.
func (c *Content) equivalent(requests []jingle.RequestContent) bool {
	if c.application == nil {
		return false
	}
	for _, rc := range requests {
		if c.application.Equivalent(rc) {
			return true
		}
	}
	return false
}

// validateRemote checks a peer's action against the legality table and
// the action refinements. Only called from the processing queue.
func (c *Content) validateRemote(action jingle.Action, request jingle.RequestContent) jingle.Ack {
	ack, found := validActions[c.State()][action]
	if !found {
		return jingle.AckBadRequest
	}
	if ack != jingle.AckOk {
		return ack
	}

	switch action {
	case jingle.ContentAdd:
		if request.Creator != c.session.PeerRole() {
			return jingle.AckBadRequest
		}
		if request.Application == nil {
			return jingle.AckBadRequest
		}
	case jingle.ContentModify:
		if c.performTieBreaks && c.unackedSendersChange != "" && request.Senders != c.unackedSendersChange {
			return jingle.AckTieBreak
		}
	case jingle.TransportReplace:
		if c.performTieBreaks && c.replacementTransport != nil {
			return jingle.AckTieBreak
		}
	}
	return jingle.AckOk
}

// validateLocalAdd checks a locally created content before it is offered.
func (c *Content) validateLocalAdd() jingle.Ack {
	ack, found := validActions[c.State()][jingle.ContentAdd]
	if !found {
		return jingle.AckBadRequest
	}
	if ack != jingle.AckOk {
		return ack
	}
	if c.creator != c.session.role {
		return jingle.AckBadRequest
	}
	if c.application == nil {
		return jingle.AckBadRequest
	}
	return jingle.AckOk
}

// validateLocal checks a locally requested action on an existing content.
func (c *Content) validateLocal(action jingle.Action, target localTarget) jingle.Ack {
	ack, found := validActions[c.State()][action]
	if !found {
		// tearing down an unoffered content is a local bookkeeping no-op
		if action == jingle.ContentRemove && c.State() == jingle.ContentStarting {
			return jingle.AckOk
		}
		return jingle.AckBadRequest
	}
	if ack != jingle.AckOk {
		return ack
	}

	switch action {
	case jingle.ContentAccept, jingle.ContentReject:
		// only the non-creating side answers an offer
		if c.creator == c.session.role {
			return jingle.AckOutOfOrder
		}
	case jingle.TransportReplace:
		if c.application != nil && !c.application.ValidateTransport(target.transport) {
			return jingle.AckBadRequest
		}
		if c.replacementTransport != nil && !c.performTieBreaks {
			return jingle.AckTieBreak
		}
	}
	return jingle.AckOk
}

// executeRemote commits a validated peer action. Runs inside the remote
// request's queue task, possibly concurrently with sibling contents of
// the same request.
func (c *Content) executeRemote(ctx context.Context, action jingle.Action, request jingle.RequestContent) error {
	switch action {
	case jingle.ContentAdd:
		return c.executeRemoteAdd(ctx, request)

	case jingle.ContentAccept:
		c.setState(jingle.ContentActive)
		err := inParallel(
			func() error { return c.application.ApplyAnswer(ctx, request.Application) },
			func() error { return c.transport.ApplyAnswer(ctx, request.Transport) },
		)
		if err != nil {
			c.endAsync(&jingle.Reason{Condition: jingle.ReasonGeneralError, Text: err.Error()})
		}
		return nil

	case jingle.ContentReject:
		c.setState(jingle.ContentRejected)
		c.shutdown()
		return nil

	case jingle.ContentRemove:
		c.setState(jingle.ContentRemoved)
		c.shutdown()
		return nil

	case jingle.ContentModify:
		return c.application.ChangeDirection(ctx, jingle.DirectionFor(request.Senders, c.session.role))

	case jingle.DescriptionInfo:
		return c.application.ApplyInfo(ctx, request.Application)

	case jingle.TransportInfo:
		return c.transport.ApplyInfo(ctx, request.Transport)

	case jingle.TransportReplace:
		replacement := c.session.createTransport(request.Transport)
		if replacement == nil {
			c.rejectTransportAsync()
			return nil
		}
		if !c.application.ValidateTransport(replacement) {
			replacement.End()
			c.rejectTransportAsync()
			return nil
		}
		c.replacementTransport = replacement
		if err := c.replacementTransport.ApplyOffer(ctx, request.Transport); err != nil {
			c.replacementTransport.End()
			c.replacementTransport = nil
			c.rejectTransportAsync()
			return nil
		}
		c.acceptTransportAsync()
		return nil

	case jingle.TransportAccept:
		c.promoteReplacementTransport(ctx)
		return nil

	case jingle.TransportReject:
		if c.replacementTransport != nil {
			c.replacementTransport.End()
			c.replacementTransport = nil
		}
		return nil
	}
	return nil
}

func (c *Content) executeRemoteAdd(ctx context.Context, request jingle.RequestContent) error {
	c.setState(jingle.ContentPending)

	c.application = c.session.createApplication(c, request.Application)
	c.transport = c.session.createTransport(request.Transport)

	if c.application == nil {
		c.endAsync(&jingle.Reason{Condition: jingle.ReasonUnsupportedApplications})
		return nil
	}
	if c.transport == nil {
		c.endAsync(&jingle.Reason{Condition: jingle.ReasonUnsupportedTransports})
		return nil
	}
	if !c.application.ValidateTransport(c.transport) {
		c.endAsync(&jingle.Reason{Condition: jingle.ReasonIncompatibleParameters})
		return nil
	}

	err := inParallel(
		func() error { return c.application.ApplyOffer(ctx, request.Application) },
		func() error { return c.transport.ApplyOffer(ctx, request.Transport) },
	)
	if err != nil {
		c.endAsync(&jingle.Reason{Condition: jingle.ReasonFailedApplication, Text: err.Error()})
		return nil
	}
	return c.application.SetTransport(ctx, c.transport)
}

// executeLocal commits a validated local action and builds the wire
// payload describing it.
func (c *Content) executeLocal(ctx context.Context, action jingle.Action, target localTarget) (jingle.RequestContent, error) {
	payload := jingle.RequestContent{Creator: c.creator, Name: c.name}

	switch action {
	case jingle.ContentAdd:
		// before session start the offer is deferred to session-initiate
		if c.session.State() == jingle.SessionStarting {
			return payload, nil
		}
		var appDesc jingle.ApplicationDescription
		var tpDesc jingle.TransportDescription
		err := inParallel(
			func() error {
				var err error
				appDesc, err = c.application.CreateOffer(ctx)
				return err
			},
			func() error {
				var err error
				tpDesc, err = c.transport.CreateOffer(ctx)
				return err
			},
		)
		if err != nil {
			c.endAsync(&jingle.Reason{Condition: jingle.ReasonFailedApplication, Text: err.Error()})
			return payload, err
		}
		c.setState(jingle.ContentUnacked)
		payload.Senders = c.senders
		payload.Disposition = c.disposition
		payload.Application = appDesc
		payload.Transport = tpDesc
		return payload, nil

	case jingle.ContentAccept:
		var appDesc jingle.ApplicationDescription
		var tpDesc jingle.TransportDescription
		err := inParallel(
			func() error {
				var err error
				appDesc, err = c.application.CreateAnswer(ctx)
				return err
			},
			func() error {
				var err error
				tpDesc, err = c.transport.CreateAnswer(ctx)
				return err
			},
		)
		if err != nil {
			c.endAsync(&jingle.Reason{Condition: jingle.ReasonFailedApplication, Text: err.Error()})
			return payload, err
		}
		payload.Senders = c.senders
		payload.Application = appDesc
		payload.Transport = tpDesc
		return payload, nil

	case jingle.ContentReject:
		c.setState(jingle.ContentRejected)
		c.shutdown()
		return payload, nil

	case jingle.ContentRemove:
		c.setState(jingle.ContentRemoved)
		c.shutdown()
		return payload, nil

	case jingle.ContentModify:
		direction := jingle.DirectionFor(target.senders, c.session.role)
		if err := c.application.ChangeDirection(ctx, direction); err != nil {
			return payload, err
		}
		c.senders = target.senders
		c.unackedSendersChange = target.senders
		payload.Senders = target.senders
		return payload, nil

	case jingle.DescriptionInfo:
		payload.Application = target.applicationInfo
		return payload, nil

	case jingle.TransportInfo:
		payload.Transport = target.transportInfo
		return payload, nil

	case jingle.TransportReplace:
		if c.replacementTransport != nil {
			c.replacementTransport.End()
		}
		c.replacementTransport = target.transport
		tpDesc, err := c.replacementTransport.CreateOffer(ctx)
		if err != nil {
			c.replacementTransport.End()
			c.replacementTransport = nil
			return payload, err
		}
		payload.Transport = tpDesc
		return payload, nil

	case jingle.TransportAccept:
		c.promoteReplacementTransport(ctx)
		return payload, nil

	case jingle.TransportReject:
		if c.replacementTransport != nil {
			c.replacementTransport.End()
			c.replacementTransport = nil
		}
		return payload, nil
	}
	return payload, nil
}

func (c *Content) promoteReplacementTransport(ctx context.Context) {
	if c.replacementTransport == nil {
		return
	}
	retired := c.transport
	c.transport = c.replacementTransport
	c.replacementTransport = nil
	if c.application != nil {
		_ = c.application.SetTransport(ctx, c.transport)
	}
	if retired != nil {
		retired.End()
	}
}

// shutdown releases the negotiated capabilities. Terminal states only.
func (c *Content) shutdown() {
	if c.application != nil {
		c.application.End()
	}
	if c.transport != nil {
		c.transport.End()
	}
	if c.replacementTransport != nil {
		c.replacementTransport.End()
		c.replacementTransport = nil
	}
}

// endAsync schedules a local content-remove without waiting on it. Used
// from inside queue tasks, where a synchronous call would deadlock.
func (c *Content) endAsync(reason *jingle.Reason) {
	c.session.pushLocal(localRequest{
		action:  jingle.ContentRemove,
		targets: []localTarget{c.target()},
		reason:  reason,
	})
}

func (c *Content) acceptTransportAsync() {
	c.session.pushLocal(localRequest{
		action:  jingle.TransportAccept,
		targets: []localTarget{c.target()},
	})
}

func (c *Content) rejectTransportAsync() {
	c.session.pushLocal(localRequest{
		action:  jingle.TransportReject,
		targets: []localTarget{c.target()},
	})
}

// stats snapshots the content for SessionStats.
func (c *Content) stats(ctx context.Context) jingle.ContentStats {
	cs := jingle.ContentStats{
		Creator:   c.creator,
		Name:      c.name,
		Senders:   c.senders,
		State:     c.State(),
		Direction: c.Direction(),
	}
	if c.application != nil {
		if appStats, err := c.application.Stats(ctx); err == nil {
			cs.Application = appStats
		}
	}
	if c.transport != nil {
		if tpStats, err := c.transport.Stats(ctx); err == nil {
			cs.Transport = tpStats
		}
	}
	return cs
}
