package manager

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/latentflip/jingle/base/log"
	"github.com/latentflip/jingle/jingle"
	"github.com/latentflip/jingle/session"
	"github.com/latentflip/jingle/signaler"
	"github.com/latentflip/jingle/testutils"
)

const (
	romeo  = "romeo@montague.example"
	juliet = "juliet@capulet.example"
)

var _ = Describe("Negotiation", func() {
	var (
		ctx      context.Context
		romeoMgr *Manager
		julietMgr *Manager
		incoming chan *session.Session
	)

	newManager := func(fabric *signaler.Memory, identity string) *Manager {
		return New(log.Fields{},
			WithApplicationType(testutils.StubType, testutils.StubApplicationFactory),
			WithTransportType(testutils.StubType, testutils.StubTransportFactory),
			WithSignalLayer(fabric.Endpoint(identity)),
		)
	}

	outgoingSession := func() (*session.Session, *session.Content) {
		s := romeoMgr.CreateSession(juliet, romeo)
		content := s.CreateContent(session.ContentOptions{
			Name:        "files",
			Application: testutils.NewStubApplication(),
			Transport:   testutils.NewStubTransport(),
		})
		ack, err := content.Start(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ack).To(Equal(jingle.AckOk))
		return s, content
	}

	BeforeEach(func() {
		ctx = context.Background()
		fabric := signaler.NewMemory(log.Fields{})
		romeoMgr = newManager(fabric, romeo)
		julietMgr = newManager(fabric, juliet)
		incoming = make(chan *session.Session, 1)
		julietMgr.OnSession(func(s *session.Session) { incoming <- s })
	})

	AfterEach(func() {
		romeoMgr.Shutdown()
		julietMgr.Shutdown()
	})

	acceptedPair := func() (*session.Session, *session.Session) {
		out, _ := outgoingSession()
		ack, err := out.Start(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ack).To(Equal(jingle.AckOk))

		var in *session.Session
		Eventually(incoming).Should(Receive(&in))
		ack, err = in.Accept(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ack).To(Equal(jingle.AckOk))

		Expect(out.Wait(ctx)).To(Succeed())
		return out, in
	}

	It("establishes a session accepted by the responder", func() {
		out, in := acceptedPair()

		Expect(out.State()).To(Equal(jingle.SessionActive))
		Expect(in.State()).To(Equal(jingle.SessionActive))

		outContent, err := out.Content(ctx, jingle.RoleInitiator, "files")
		Expect(err).NotTo(HaveOccurred())
		Expect(outContent.State()).To(Equal(jingle.ContentActive))

		inContent, err := in.Content(ctx, jingle.RoleInitiator, "files")
		Expect(err).NotTo(HaveOccurred())
		Expect(inContent.State()).To(Equal(jingle.ContentActive))
	})

	It("lets the responder decline an incoming session", func() {
		out, _ := outgoingSession()
		ack, err := out.Start(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ack).To(Equal(jingle.AckOk))

		var in *session.Session
		Eventually(incoming).Should(Receive(&in))
		ack, err = in.End(ctx, &jingle.Reason{Condition: jingle.ReasonDecline})
		Expect(err).NotTo(HaveOccurred())
		Expect(ack).To(Equal(jingle.AckOk))

		Expect(in.State()).To(Equal(jingle.SessionEnded))
		Eventually(out.State).Should(Equal(jingle.SessionEnded))
	})

	It("adds a content to an established session", func() {
		out, in := acceptedPair()

		screen := out.CreateContent(session.ContentOptions{
			Name:        "screen",
			Application: testutils.NewStubApplication(),
			Transport:   testutils.NewStubTransport(),
		})
		ack, err := screen.Start(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ack).To(Equal(jingle.AckOk))
		Expect(screen.State()).To(Equal(jingle.ContentPending))

		inScreen, err := in.Content(ctx, jingle.RoleInitiator, "screen")
		Expect(err).NotTo(HaveOccurred())
		Expect(inScreen.State()).To(Equal(jingle.ContentPending))

		ack, err = inScreen.Accept(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ack).To(Equal(jingle.AckOk))
		Expect(inScreen.State()).To(Equal(jingle.ContentActive))
		Eventually(screen.State).Should(Equal(jingle.ContentActive))
	})

	It("tears both sides down when the last content is removed", func() {
		out, in := acceptedPair()

		outContent, err := out.Content(ctx, jingle.RoleInitiator, "files")
		Expect(err).NotTo(HaveOccurred())
		ack, err := outContent.End(ctx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(ack).To(Equal(jingle.AckOk))

		Eventually(out.State).WithTimeout(time.Second).Should(Equal(jingle.SessionEnded))
		Eventually(in.State).WithTimeout(time.Second).Should(Equal(jingle.SessionEnded))
	})

	It("rejecting a content keeps the rest of the session alive", func() {
		out, _ := outgoingSession()
		extra := out.CreateContent(session.ContentOptions{
			Name:        "screen",
			Application: testutils.NewStubApplication(),
			Transport:   testutils.NewStubTransport(),
		})
		ack, err := extra.Start(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ack).To(Equal(jingle.AckOk))

		ack, err = out.Start(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ack).To(Equal(jingle.AckOk))

		var in *session.Session
		Eventually(incoming).Should(Receive(&in))

		inScreen, err := in.Content(ctx, jingle.RoleInitiator, "screen")
		Expect(err).NotTo(HaveOccurred())
		ack, err = inScreen.Reject(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ack).To(Equal(jingle.AckOk))

		ack, err = in.Accept(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ack).To(Equal(jingle.AckOk))
		Expect(in.State()).To(Equal(jingle.SessionActive))
		Eventually(out.State).Should(Equal(jingle.SessionActive))

		outScreen, err := out.Content(ctx, jingle.RoleInitiator, "screen")
		Expect(err).NotTo(HaveOccurred())
		Eventually(outScreen.State).Should(Equal(jingle.ContentRejected))
	})
})
