// Package filetransfer implements the file-transfer application type:
// one offered file per content, moved over whichever stream transport
// the session negotiates.
package filetransfer

import (
	"context"

	"go.uber.org/atomic"

	"github.com/latentflip/jingle/jingle"
)

// Namespace is the wire name of the application type.
const Namespace = "urn:xmpp:jingle:apps:file-transfer:4"

// File describes the offered file.
type File struct {
	Name      string
	Size      int64
	MediaType string
	Hash      string
}

// Description is the wire description: the offer carries the sender's
// file, the answer echoes what the receiver agreed to take.
type Description struct {
	File File
}

var _ jingle.ApplicationDescription = Description{}

func (Description) ApplicationType() string { return Namespace }

// Application negotiates one file over one content.
type Application struct {
	direction jingle.ContentDirection

	local  File
	remote File

	transport jingle.Transport
	ended     atomic.Bool
}

var _ jingle.Application = (*Application)(nil)

// New builds an application offering the given file.
func New(file File) *Application {
	return &Application{
		direction: jingle.DirectionSend,
		local:     file,
	}
}

// Factory plugs the application type into a manager. Unsupported
// descriptions resolve to nil.
func Factory(direction jingle.ContentDirection, desc jingle.ApplicationDescription) jingle.Application {
	fd, ok := desc.(Description)
	if !ok {
		return nil
	}
	return &Application{direction: direction, remote: fd.File}
}

func (a *Application) ApplicationType() string { return Namespace }

// File is the locally offered file, or the zero File on the receiving
// side.
func (a *Application) File() File { return a.local }

// RemoteFile is the file the peer described.
func (a *Application) RemoteFile() File { return a.remote }

func (a *Application) Direction() jingle.ContentDirection { return a.direction }

// Equivalent treats any file-transfer content for the same file name as
// the same offer.
func (a *Application) Equivalent(content jingle.RequestContent) bool {
	fd, ok := content.Application.(Description)
	if !ok {
		return false
	}
	name := a.local.Name
	if name == "" {
		name = a.remote.Name
	}
	return fd.File.Name == name
}

// ValidateTransport requires a transport that can carry a byte stream.
func (a *Application) ValidateTransport(transport jingle.Transport) bool {
	return transport != nil
}

func (a *Application) SetTransport(ctx context.Context, transport jingle.Transport) error {
	a.transport = transport
	return transport.OpenStreamChannel(ctx)
}

func (a *Application) CreateOffer(context.Context) (jingle.ApplicationDescription, error) {
	return Description{File: a.local}, nil
}

func (a *Application) CreateAnswer(context.Context) (jingle.ApplicationDescription, error) {
	return Description{File: a.remote}, nil
}

func (a *Application) ApplyOffer(_ context.Context, desc jingle.ApplicationDescription) error {
	if fd, ok := desc.(Description); ok {
		a.remote = fd.File
	}
	return nil
}

func (a *Application) ApplyAnswer(_ context.Context, desc jingle.ApplicationDescription) error {
	if fd, ok := desc.(Description); ok {
		a.remote = fd.File
	}
	return nil
}

func (a *Application) ApplyInfo(context.Context, jingle.ApplicationDescription) error { return nil }

func (a *Application) ChangeDirection(_ context.Context, direction jingle.ContentDirection) error {
	a.direction = direction
	return nil
}

// Stats reports both sides' file descriptions and the current direction.
func (a *Application) Stats(context.Context) (any, error) {
	return map[string]any{
		"local":     a.local,
		"remote":    a.remote,
		"direction": a.direction,
	}, nil
}

func (a *Application) End() { a.ended.Store(true) }

// Ended reports whether the engine released the application.
func (a *Application) Ended() bool { return a.ended.Load() }
