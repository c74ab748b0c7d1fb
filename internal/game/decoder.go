package game

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"minorityScope/internal/model"
)

// choiceFields hold the contract's uint8 choice encoding.
var choiceFields = map[string]struct{}{
	"choice":        {},
	"winningChoice": {},
}

// DecoderConfig configures decoder behavior.
type DecoderConfig struct {
	// Topic0Map adds topic0 -> event name aliases, e.g. for redeployed contracts.
	Topic0Map map[string]string
}

// Decoder turns raw game contract logs into GameEvents.
type Decoder struct {
	gameABI     abi.ABI
	topicToName map[string]string
}

func NewDecoder(cfg DecoderConfig) (*Decoder, error) {
	gameABI, err := ABI()
	if err != nil {
		return nil, err
	}

	topicToName := make(map[string]string, len(gameABI.Events))
	for name, event := range gameABI.Events {
		topicToName[strings.ToLower(event.ID.Hex())] = name
	}

	for topic0, name := range cfg.Topic0Map {
		original := name
		name = normalizeEventName(gameABI, name)
		if name == "" {
			return nil, fmt.Errorf("unsupported event name in topic0 map: %s", original)
		}
		if topic0 == "" {
			continue
		}
		topicToName[strings.ToLower(topic0)] = name
	}

	return &Decoder{gameABI: gameABI, topicToName: topicToName}, nil
}

// CanDecode checks if the topic0 is supported.
func (d *Decoder) CanDecode(topic0 string) bool {
	if topic0 == "" {
		return false
	}
	_, ok := d.topicToName[strings.ToLower(topic0)]
	return ok
}

// Topics returns every supported topic0, sorted.
func (d *Decoder) Topics() []string {
	out := make([]string, 0, len(d.topicToName))
	for topic := range d.topicToName {
		out = append(out, topic)
	}
	sort.Strings(out)
	return out
}

// Decode converts a LogRecord into a GameEvent.
func (d *Decoder) Decode(log model.LogRecord) (model.GameEvent, error) {
	if len(log.Topics) == 0 {
		return model.GameEvent{}, fmt.Errorf("missing topics")
	}
	name, ok := d.topicToName[strings.ToLower(log.Topics[0])]
	if !ok {
		return model.GameEvent{}, fmt.Errorf("unsupported topic0: %s", log.Topics[0])
	}
	event := d.gameABI.Events[name]

	indexedTopics, err := parseIndexedTopics(event, log.Topics)
	if err != nil {
		return model.GameEvent{}, err
	}
	values := make(map[string]interface{}, len(event.Inputs))
	if err := abi.ParseTopicsIntoMap(values, indexedArguments(event.Inputs), indexedTopics); err != nil {
		return model.GameEvent{}, fmt.Errorf("parse topics: %w", err)
	}

	data, err := hexutil.Decode(normalizeHex(log.Data))
	if err != nil {
		return model.GameEvent{}, fmt.Errorf("invalid data: %w", err)
	}
	if err := event.Inputs.NonIndexed().UnpackIntoMap(values, data); err != nil {
		return model.GameEvent{}, fmt.Errorf("unpack %s: %w", name, err)
	}

	fields := make(map[string]string, len(values))
	for key, value := range values {
		text, err := formatValue(key, value)
		if err != nil {
			return model.GameEvent{}, fmt.Errorf("%s.%s: %w", name, key, err)
		}
		fields[key] = text
	}

	return model.GameEvent{
		ChainID:     log.ChainID,
		BlockNumber: log.BlockNumber,
		BlockHash:   log.BlockHash,
		TxHash:      log.TxHash,
		LogIndex:    log.LogIndex,
		Address:     log.Address,
		EventName:   name,
		Timestamp:   log.Timestamp,
		Fields:      fields,
		Raw:         &model.RawLogRef{Topic0: log.Topics[0], Data: log.Data},
	}, nil
}

func normalizeEventName(gameABI abi.ABI, name string) string {
	name = strings.TrimSpace(name)
	for known := range gameABI.Events {
		if strings.EqualFold(known, name) {
			return known
		}
	}
	return ""
}

func normalizeHex(data string) string {
	if data == "" {
		return "0x"
	}
	return data
}

func formatValue(key string, value interface{}) (string, error) {
	if _, ok := choiceFields[key]; ok {
		n, err := asUint64(value)
		if err != nil {
			return "", err
		}
		choice, err := model.ParseChoice(strconv.FormatUint(n, 10))
		if err != nil {
			return "", err
		}
		return string(choice), nil
	}

	switch v := value.(type) {
	case *big.Int:
		if v == nil {
			return "", fmt.Errorf("nil integer")
		}
		return v.String(), nil
	case common.Address:
		return strings.ToLower(v.Hex()), nil
	case common.Hash:
		return v.Hex(), nil
	case uint8, uint16, uint32, uint64, int8, int16, int32, int64:
		return fmt.Sprintf("%d", v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}
}

func asUint64(value interface{}) (uint64, error) {
	switch v := value.(type) {
	case uint8:
		return uint64(v), nil
	case *big.Int:
		if v == nil || !v.IsUint64() {
			return 0, fmt.Errorf("value out of range")
		}
		return v.Uint64(), nil
	default:
		return 0, fmt.Errorf("unexpected choice type %T", value)
	}
}

func parseIndexedTopics(event abi.Event, topics []string) ([]common.Hash, error) {
	indexedCount := len(indexedArguments(event.Inputs))
	if len(topics) != indexedCount+1 {
		return nil, fmt.Errorf("expected %d topics, got %d", indexedCount+1, len(topics))
	}
	return parseTopicHashes(topics[1:])
}

func parseTopicHashes(topics []string) ([]common.Hash, error) {
	out := make([]common.Hash, 0, len(topics))
	for _, topic := range topics {
		data, err := hexutil.Decode(topic)
		if err != nil {
			return nil, fmt.Errorf("invalid topic: %w", err)
		}
		if len(data) > 32 {
			return nil, fmt.Errorf("topic length %d", len(data))
		}
		out = append(out, common.BytesToHash(data))
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}
