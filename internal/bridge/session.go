package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/sabridge/internal/appliance"
	"github.com/muurk/sabridge/internal/logging"
	"github.com/muurk/sabridge/internal/protocol"
)

// Action classifies what a client line caused.
type Action int

const (
	// ActionNone means the line produced neither a write nor a reply.
	ActionNone Action = iota
	// ActionClose means the session must end; nothing was written.
	ActionClose
	// ActionReply means an immediate reply was sent, no serial write.
	ActionReply
	// ActionWrite means a serial command was dispatched (or queued
	// behind the outstanding one).
	ActionWrite
)

// PendingKind is the command a completed frame will be interpreted as.
type PendingKind int

const (
	PendingNone PendingKind = iota
	PendingRegister
	PendingReadAllStates
	PendingReadState
	PendingInfo
	PendingRaw
)

// pendingCommand pairs a dispatch with the bytes it writes to serial.
// For queued commands the write happens when the command activates.
type pendingCommand struct {
	kind PendingKind
	req  protocol.Request
	pdu  []byte
}

// Session is one client connection's view of the bridge. Construct with
// NewSession; reset by constructing a new one per connection.
type Session struct {
	typeID   byte
	codec    *protocol.Codec
	registry *appliance.Registry
	serial   io.Writer
	client   io.Writer

	mu          sync.Mutex
	active      *pendingCommand
	activeSince time.Time
	queue       []*pendingCommand
}

// NewSession builds a session for one client. serial receives encoded
// request PDUs; client receives newline-terminated reply lines.
func NewSession(typeID byte, codec *protocol.Codec, registry *appliance.Registry, serial, client io.Writer) *Session {
	return &Session{
		typeID:   typeID,
		codec:    codec,
		registry: registry,
		serial:   serial,
		client:   client,
	}
}

// HandleClientText dispatches one client line. Keywords are
// case-insensitive; CR/LF and surrounding space are stripped.
func (s *Session) HandleClientText(line string) (Action, error) {
	text := strings.TrimSpace(strings.Trim(line, "\r\n"))
	if text == "" {
		return ActionNone, nil
	}
	fields := strings.Fields(text)
	keyword := strings.ToLower(fields[0])

	switch keyword {
	case "exit":
		return ActionClose, nil
	case "register":
		return s.dispatchRequest(PendingRegister, protocol.InfoRequest{Service: protocol.SvcRegistration})
	case "states":
		return s.dispatchRequest(PendingReadAllStates, protocol.InfoRequest{Service: protocol.SvcReadAllStates})
	case "classid":
		return s.dispatchRequest(PendingInfo, protocol.InfoRequest{Service: protocol.SvcReadClassID})
	case "protocol":
		return s.dispatchRequest(PendingInfo, protocol.InfoRequest{Service: protocol.SvcReadProtocolVersion})
	case "brand":
		return s.dispatchRequest(PendingInfo, protocol.InfoRequest{Service: protocol.SvcReadBrand})
	case "model":
		return s.dispatchRequest(PendingInfo, protocol.InfoRequest{Service: protocol.SvcReadModel})
	case "read":
		if len(fields) != 2 {
			return s.replyError(fmt.Errorf("read needs a command name"))
		}
		id, err := s.registry.TranslateCommandName(s.typeID, fields[1])
		if err != nil {
			return s.replyError(err)
		}
		return s.dispatchRequest(PendingReadState, protocol.StateReadRequest{TypeID: s.typeID, Service: id})
	case "write":
		if len(fields) != 3 {
			return s.replyError(fmt.Errorf("write needs a command name and a value"))
		}
		id, err := s.registry.TranslateCommandName(s.typeID, fields[1])
		if err != nil {
			return s.replyError(err)
		}
		if profile, perr := s.registry.Profile(s.typeID); perr == nil {
			if desc, ok := profile.Service(id); ok && !desc.Writable {
				return s.replyError(fmt.Errorf("%s is read-only", desc.Name))
			}
		}
		value, err := strconv.ParseUint(fields[2], 10, 16)
		if err != nil {
			return s.replyError(fmt.Errorf("value %q not numeric", fields[2]))
		}
		return s.dispatchRequest(PendingReadState, protocol.StateWriteRequest{
			TypeID: s.typeID, Service: id, Value: uint16(value),
		})
	}

	// Six comma-separated integers are a raw passthrough frame, the
	// diagnostic escape hatch that bypasses the codec.
	if pdu, ok := parseRawBytes(text); ok {
		return s.dispatch(&pendingCommand{kind: PendingRaw, pdu: pdu})
	}

	if err := s.reply(fmt.Sprintf("cmd %s not support.", text)); err != nil {
		return ActionReply, err
	}
	return ActionReply, nil
}

// parseRawBytes parses exactly six comma-separated integer tokens,
// decimal by default or hexadecimal when the whole line starts with
// "0x".
func parseRawBytes(text string) ([]byte, bool) {
	tokens := strings.Split(text, ",")
	if len(tokens) != 6 {
		return nil, false
	}
	base := 10
	if strings.HasPrefix(text, "0x") {
		base = 16
	}
	pdu := make([]byte, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if base == 16 {
			tok = strings.TrimPrefix(strings.ToLower(tok), "0x")
		}
		n, err := strconv.ParseUint(tok, base, 8)
		if err != nil {
			return nil, false
		}
		pdu = append(pdu, byte(n))
	}
	return pdu, true
}

func (s *Session) dispatchRequest(kind PendingKind, req protocol.Request) (Action, error) {
	pdu, err := s.codec.Encode(req)
	if err != nil {
		return s.replyError(err)
	}
	return s.dispatch(&pendingCommand{kind: kind, req: req, pdu: pdu})
}

// dispatch activates a command when none is outstanding, otherwise
// queues it. The serial write for a queued command is deferred until it
// activates, so in-flight frames are never interleaved.
func (s *Session) dispatch(cmd *pendingCommand) (Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		s.queue = append(s.queue, cmd)
		logging.Debug("command queued behind outstanding frame",
			zap.Int("queue_len", len(s.queue)))
		return ActionWrite, nil
	}
	s.active = cmd
	s.activeSince = time.Now()
	if _, err := s.serial.Write(cmd.pdu); err != nil {
		s.active = nil
		return ActionWrite, fmt.Errorf("serial write: %w", err)
	}
	logging.LogRawBytes("serial command written", cmd.pdu)
	return ActionWrite, nil
}

// HandleFrame resolves a completed frame against the pending command
// and replies to the client. The finished command is taken and the
// queue head activated inside one critical section, so a command
// arriving while the reply is being written still observes an
// outstanding command and queues behind it.
func (s *Session) HandleFrame(frame protocol.Frame) error {
	s.mu.Lock()
	cmd := s.active
	nextErr := s.advanceLocked()
	s.mu.Unlock()

	reply, err := s.formatReply(cmd, frame)
	if err != nil {
		// Recoverable: the frame is discarded, the session continues.
		logging.Warn("frame decode failed", zap.Error(err))
		reply = fmt.Sprintf("error: %v", err)
	}
	if err := s.reply(reply); err != nil {
		return err
	}
	return nextErr
}

// advanceLocked pops the queue head into the active slot and writes its
// deferred PDU, or clears the slot when the queue is empty. Callers
// must hold mu.
func (s *Session) advanceLocked() error {
	if len(s.queue) == 0 {
		s.active = nil
		return nil
	}
	next := s.queue[0]
	s.queue = s.queue[1:]
	s.active = next
	s.activeSince = time.Now()
	if next.pdu != nil {
		if _, err := s.serial.Write(next.pdu); err != nil {
			s.active = nil
			return fmt.Errorf("serial write: %w", err)
		}
		logging.LogRawBytes("queued serial command written", next.pdu)
	}
	return nil
}

// formatReply renders the frame under the pending command's kind.
func (s *Session) formatReply(cmd *pendingCommand, frame protocol.Frame) (string, error) {
	kind := PendingNone
	if cmd != nil {
		kind = cmd.kind
	}

	switch kind {
	case PendingRegister:
		resp, err := s.codec.Decode(frame, cmd.req)
		if err != nil {
			return "", err
		}
		return s.formatRegister(resp.(protocol.RegisterResponse))
	case PendingReadAllStates:
		resp, err := s.codec.Decode(frame, cmd.req)
		if err != nil {
			return "", err
		}
		reports, err := s.registry.DecodeAllStates(s.typeID, resp.(protocol.InfoResponse).Data)
		if err != nil {
			return "", err
		}
		return marshalJSON(reports)
	case PendingReadState:
		resp, err := s.codec.Decode(frame, cmd.req)
		if err != nil {
			return "", err
		}
		state := resp.(protocol.StateReadResponse)
		report, err := s.registry.DecodeServiceValue(state.TypeID, state.ServiceID, state.Raw)
		if err != nil {
			return "", err
		}
		return marshalJSON(report)
	case PendingInfo:
		resp, err := s.codec.Decode(frame, cmd.req)
		if err != nil {
			return "", err
		}
		return formatInfo(resp.(protocol.InfoResponse))
	default:
		// Raw passthrough and unsolicited frames render as the frame's
		// bytes in comma-separated decimal.
		return formatRawFrame(frame), nil
	}
}

// registerReply is the JSON shape of a register response.
type registerReply struct {
	TypeID   byte                    `json:"type_id"`
	Device   string                  `json:"device,omitempty"`
	ClassID  byte                    `json:"class_id"`
	Protocol string                  `json:"protocol"`
	Services []appliance.CommandHelp `json:"services"`
}

func (s *Session) formatRegister(reg protocol.RegisterResponse) (string, error) {
	reply := registerReply{
		TypeID:   reg.TypeID,
		ClassID:  reg.ClassID,
		Protocol: fmt.Sprintf("%d.%d", reg.ProtocolMajor, reg.ProtocolMinor),
	}
	profile, err := s.registry.Profile(reg.TypeID)
	if err == nil {
		reply.Device = profile.Name
	}
	for _, rec := range reg.Services {
		if profile != nil {
			if desc, ok := profile.Service(rec.ServiceID); ok {
				reply.Services = append(reply.Services, desc.Help())
				continue
			}
		}
		reply.Services = append(reply.Services, appliance.CommandHelp{
			Name:     fmt.Sprintf("service_0x%02x", rec.ServiceID),
			Writable: rec.Writable,
		})
	}
	return marshalJSON(reply)
}

// formatInfo renders the general info services: numeric ids big-endian,
// the protocol version as major.minor, brand and model as UTF-8 with
// the trailing NUL stripped.
func formatInfo(resp protocol.InfoResponse) (string, error) {
	switch resp.Service {
	case protocol.SvcReadClassID, protocol.SvcReadTypeID:
		var n uint64
		for _, b := range resp.Data {
			n = n<<8 | uint64(b)
		}
		return strconv.FormatUint(n, 10), nil
	case protocol.SvcReadProtocolVersion:
		if len(resp.Data) != 2 {
			return "", fmt.Errorf("%w: protocol version needs 2 data bytes, have %d",
				protocol.ErrTruncated, len(resp.Data))
		}
		return fmt.Sprintf("%d.%d", resp.Data[0], resp.Data[1]), nil
	case protocol.SvcReadBrand, protocol.SvcReadModel:
		return string(bytes.TrimRight(resp.Data, "\x00")), nil
	default:
		return formatRawFrame(resp.Data), nil
	}
}

func formatRawFrame(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = strconv.Itoa(int(b))
	}
	return strings.Join(parts, ", ")
}

func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal reply: %w", err)
	}
	return string(data), nil
}

func (s *Session) replyError(err error) (Action, error) {
	if werr := s.reply(fmt.Sprintf("error: %v", err)); werr != nil {
		return ActionReply, werr
	}
	return ActionReply, nil
}

func (s *Session) reply(text string) error {
	if _, err := io.WriteString(s.client, text+"\n"); err != nil {
		return fmt.Errorf("client write: %w", err)
	}
	return nil
}

// Outstanding reports whether a command is awaiting its frame. Exposed
// for the gateway's idle bookkeeping.
func (s *Session) Outstanding() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

// OutstandingSince returns when the active command was dispatched.
func (s *Session) OutstandingSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeSince, s.active != nil
}

// ErrFrameTimeout reports that a device never completed the frame for
// an outstanding command within the configured bound.
var ErrFrameTimeout = errors.New("frame timeout")

// ExpireOutstanding abandons the active command with a timeout reply
// and activates the next queued one. Returns true when a command was
// actually outstanding. Like HandleFrame, the handoff to the queue
// head happens in one critical section.
func (s *Session) ExpireOutstanding() (bool, error) {
	s.mu.Lock()
	expired := s.active != nil
	var nextErr error
	if expired {
		nextErr = s.advanceLocked()
	}
	s.mu.Unlock()

	if !expired {
		return false, nil
	}
	if err := s.reply(fmt.Sprintf("error: %v", ErrFrameTimeout)); err != nil {
		return true, err
	}
	return true, nextErr
}
