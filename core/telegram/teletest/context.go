// Package teletest provides an in-memory tele.Context for handler tests.
package teletest

import (
	"strings"
	"sync"

	tele "gopkg.in/telebot.v4"
)

// Sent records one outbound call made through the context.
type Sent struct {
	Method string
	What   any
	Opts   []any
}

// Text returns the message body when What is a string.
func (s Sent) Text() string {
	str, _ := s.What.(string)
	return str
}

// Markup returns the reply markup passed with the call, if any.
func (s Sent) Markup() *tele.ReplyMarkup {
	for _, o := range s.Opts {
		switch v := o.(type) {
		case *tele.ReplyMarkup:
			return v
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return v.ReplyMarkup
			}
		}
	}
	return nil
}

// Context implements the parts of tele.Context used by handlers and middlewares.
// Methods it does not override panic through the nil embedded interface.
type Context struct {
	tele.Context

	U tele.Update
	// SendErr, when set, is returned by every outbound call.
	SendErr error

	mu        sync.Mutex
	store     map[string]any
	sent      []Sent
	responses []*tele.CallbackResponse
	answers   []*tele.QueryResponse
}

var _ tele.Context = (*Context)(nil)

func user(id int64) *tele.User {
	return &tele.User{ID: id, FirstName: "Test", Username: "tester", LanguageCode: "en"}
}

func chat(id int64) *tele.Chat {
	return &tele.Chat{ID: id, Type: tele.ChatPrivate}
}

// NewMessage builds a private-chat text message update.
func NewMessage(userID int64, text string) *Context {
	return &Context{U: tele.Update{
		ID: 1,
		Message: &tele.Message{
			ID:     10,
			Sender: user(userID),
			Chat:   chat(userID),
			Text:   text,
		},
	}}
}

// NewCallback builds a callback update the way inline buttons made by ReplyMarkup.Data encode it.
func NewCallback(userID int64, unique, payload string) *Context {
	data := "\f" + unique
	if payload != "" {
		data += "|" + payload
	}
	return &Context{U: tele.Update{
		ID: 2,
		Callback: &tele.Callback{
			ID:     "cb-1",
			Sender: user(userID),
			Data:   data,
			Message: &tele.Message{
				ID:     11,
				Sender: &tele.User{ID: 1, IsBot: true},
				Chat:   chat(userID),
			},
		},
	}}
}

// NewQuery builds an inline query update.
func NewQuery(userID int64, text string) *Context {
	return &Context{U: tele.Update{
		ID:    3,
		Query: &tele.Query{ID: "q-1", Sender: user(userID), Text: text},
	}}
}

func (c *Context) Update() tele.Update { return c.U }

func (c *Context) Message() *tele.Message {
	switch {
	case c.U.Message != nil:
		return c.U.Message
	case c.U.Callback != nil:
		return c.U.Callback.Message
	}
	return nil
}

func (c *Context) Callback() *tele.Callback { return c.U.Callback }

func (c *Context) Query() *tele.Query { return c.U.Query }

func (c *Context) Sender() *tele.User {
	switch {
	case c.U.Callback != nil:
		return c.U.Callback.Sender
	case c.U.Message != nil:
		return c.U.Message.Sender
	case c.U.Query != nil:
		return c.U.Query.Sender
	}
	return nil
}

func (c *Context) Chat() *tele.Chat {
	if m := c.Message(); m != nil {
		return m.Chat
	}
	return nil
}

func (c *Context) Recipient() tele.Recipient { return c.Chat() }

func (c *Context) Text() string {
	if m := c.Message(); m != nil {
		return m.Text
	}
	return ""
}

func (c *Context) Data() string {
	switch {
	case c.U.Callback != nil:
		return c.U.Callback.Data
	case c.U.Query != nil:
		return c.U.Query.Text
	case c.U.Message != nil:
		return c.U.Message.Payload
	}
	return ""
}

func (c *Context) Args() []string {
	if c.U.Message == nil {
		return nil
	}
	return strings.Fields(c.U.Message.Payload)
}

func (c *Context) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store[key]
}

func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = make(map[string]any)
	}
	c.store[key] = val
}

func (c *Context) record(method string, what any, opts []any) error {
	if c.SendErr != nil {
		return c.SendErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, Sent{Method: method, What: what, Opts: opts})
	return nil
}

func (c *Context) Send(what any, opts ...any) error { return c.record("send", what, opts) }

func (c *Context) Reply(what any, opts ...any) error { return c.record("reply", what, opts) }

func (c *Context) Edit(what any, opts ...any) error { return c.record("edit", what, opts) }

func (c *Context) EditOrSend(what any, opts ...any) error {
	if c.U.Callback != nil {
		return c.record("edit", what, opts)
	}
	return c.record("send", what, opts)
}

func (c *Context) EditOrReply(what any, opts ...any) error {
	if c.U.Callback != nil {
		return c.record("edit", what, opts)
	}
	return c.record("reply", what, opts)
}

func (c *Context) Respond(resp ...*tele.CallbackResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(resp) == 0 {
		c.responses = append(c.responses, &tele.CallbackResponse{})
		return nil
	}
	c.responses = append(c.responses, resp...)
	return nil
}

func (c *Context) Answer(resp *tele.QueryResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers = append(c.answers, resp)
	return nil
}

// SentMessages returns a copy of every outbound call in order.
func (c *Context) SentMessages() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.sent...)
}

// LastText returns the text of the last outbound call, or "".
func (c *Context) LastText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		return ""
	}
	return c.sent[len(c.sent)-1].Text()
}

// Responses returns callback answers.
func (c *Context) Responses() []*tele.CallbackResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*tele.CallbackResponse(nil), c.responses...)
}

// Answers returns inline query answers.
func (c *Context) Answers() []*tele.QueryResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*tele.QueryResponse(nil), c.answers...)
}
