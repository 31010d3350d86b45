package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dep2p/go-nostrkit/internal/core/codec"
	"github.com/dep2p/go-nostrkit/internal/core/validator"
	"github.com/dep2p/go-nostrkit/pkg/types"
)

// Parser 入站帧解析器
//
// 无可变状态，可并发使用。
type Parser struct {
	validator        *validator.Validator
	verifySignatures bool
}

// NewParser 创建解析器
//
// verifySignatures 为 false 时 EVENT 只做结构校验。
func NewParser(v *validator.Validator, verifySignatures bool) *Parser {
	if v == nil {
		v = validator.New(nil)
	}
	return &Parser{
		validator:        v,
		verifySignatures: verifySignatures,
	}
}

// VerifiesSignatures 是否校验入站事件签名
func (p *Parser) VerifiesSignatures() bool {
	return p.verifySignatures
}

// Parse 解析一帧
func (p *Parser) Parse(raw []byte) (Message, error) {
	var frame []json.RawMessage
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("%w: not a JSON array: %v", types.ErrProtocolParse, err)
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("%w: empty frame", types.ErrProtocolParse)
	}

	var label string
	if isNull(frame[0]) {
		return nil, fmt.Errorf("%w: label is null", types.ErrProtocolParse)
	}
	if err := json.Unmarshal(frame[0], &label); err != nil {
		return nil, fmt.Errorf("%w: label is not a string", types.ErrProtocolParse)
	}

	switch label {
	case LabelEvent:
		return p.parseEvent(frame)

	case LabelNotice:
		if err := need(label, frame, 2); err != nil {
			return nil, err
		}
		text, err := stringAt(label, frame, 1)
		if err != nil {
			return nil, err
		}
		return &NoticeMessage{Text: text}, nil

	case LabelEOSE:
		if err := need(label, frame, 2); err != nil {
			return nil, err
		}
		subID, err := stringAt(label, frame, 1)
		if err != nil {
			return nil, err
		}
		return &EOSEMessage{SubscriptionID: subID}, nil

	case LabelOK:
		return parseOK(frame)

	case LabelAuth:
		if err := need(label, frame, 2); err != nil {
			return nil, err
		}
		challenge, err := stringAt(label, frame, 1)
		if err != nil {
			return nil, err
		}
		return &AuthMessage{Challenge: challenge}, nil

	case LabelClosed:
		if err := need(label, frame, 2); err != nil {
			return nil, err
		}
		subID, err := stringAt(label, frame, 1)
		if err != nil {
			return nil, err
		}
		msg := &ClosedMessage{SubscriptionID: subID}
		if len(frame) > 2 {
			if msg.Reason, err = stringAt(label, frame, 2); err != nil {
				return nil, err
			}
		}
		return msg, nil

	default:
		return &UnknownMessage{Type: label, Raw: append([]byte(nil), raw...)}, nil
	}
}

func (p *Parser) parseEvent(frame []json.RawMessage) (Message, error) {
	if err := need(LabelEvent, frame, 3); err != nil {
		return nil, err
	}
	subID, err := stringAt(LabelEvent, frame, 1)
	if err != nil {
		return nil, err
	}

	if isNull(frame[2]) {
		return nil, fmt.Errorf("%w: EVENT payload is null", types.ErrProtocolParse)
	}
	ev, err := codec.ParseEvent(frame[2])
	if err != nil {
		return nil, fmt.Errorf("%w: EVENT payload: %w", types.ErrProtocolParse, err)
	}

	var result validator.Result
	if p.verifySignatures {
		result = p.validator.ValidateEventComplete(ev)
	} else {
		result = p.validator.ValidateEvent(ev)
	}
	if !result.Valid {
		return nil, &RejectedEventError{
			SubscriptionID: subID,
			EventID:        ev.ID,
			Reason:         result.Reason,
			Cause:          result.Cause,
		}
	}

	return &EventMessage{SubscriptionID: subID, Event: ev}, nil
}

func parseOK(frame []json.RawMessage) (Message, error) {
	if err := need(LabelOK, frame, 3); err != nil {
		return nil, err
	}
	eventID, err := stringAt(LabelOK, frame, 1)
	if err != nil {
		return nil, err
	}

	var success bool
	if isNull(frame[2]) {
		return nil, fmt.Errorf("%w: OK success flag is null", types.ErrProtocolParse)
	}
	if err := json.Unmarshal(frame[2], &success); err != nil {
		return nil, fmt.Errorf("%w: OK success flag is not a boolean", types.ErrProtocolParse)
	}

	msg := &OKMessage{EventID: eventID, Success: success}
	if len(frame) > 3 {
		if msg.Reason, err = stringAt(LabelOK, frame, 3); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

func need(label string, frame []json.RawMessage, n int) error {
	if len(frame) < n {
		return fmt.Errorf("%w: %s frame needs %d elements, got %d", types.ErrProtocolParse, label, n, len(frame))
	}
	return nil
}

func stringAt(label string, frame []json.RawMessage, i int) (string, error) {
	var s string
	if isNull(frame[i]) {
		return "", fmt.Errorf("%w: %s element %d is null", types.ErrProtocolParse, label, i)
	}
	if err := json.Unmarshal(frame[i], &s); err != nil {
		return "", fmt.Errorf("%w: %s element %d is not a string", types.ErrProtocolParse, label, i)
	}
	return s, nil
}

// isNull json.Unmarshal 把 null 解成零值而不报错
func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
