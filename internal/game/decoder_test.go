package game

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"minorityScope/internal/model"
)

var contract = common.HexToAddress("0x1111111111111111111111111111111111111111")

func TestDecoderPlayerMadeChoice(t *testing.T) {
	gameABI, err := ABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewDecoder(DecoderConfig{})
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	player := common.HexToAddress("0x2222222222222222222222222222222222222222")
	data, err := gameABI.Events["PlayerMadeChoice"].Inputs.NonIndexed().Pack(uint8(1), big.NewInt(3))
	if err != nil {
		t.Fatalf("pack choice: %v", err)
	}

	logRecord := buildLogRecord(gameABI.Events["PlayerMadeChoice"].ID, data, []common.Hash{
		common.BigToHash(big.NewInt(42)),
		topicFromAddress(player),
	})

	event, err := decoder.Decode(logRecord)
	if err != nil {
		t.Fatalf("decode choice: %v", err)
	}
	if event.EventName != model.EventPlayerMadeChoice {
		t.Fatalf("event name mismatch: %s", event.EventName)
	}
	if event.Fields["poolId"] != "42" || event.Fields["round"] != "3" {
		t.Fatalf("fields mismatch: %+v", event.Fields)
	}
	if event.Fields["choice"] != "TAILS" {
		t.Fatalf("choice mismatch: %s", event.Fields["choice"])
	}
	if event.Fields["player"] != strings.ToLower(player.Hex()) {
		t.Fatalf("player mismatch: %s", event.Fields["player"])
	}
	if event.Raw == nil || event.Raw.Topic0 != logRecord.Topics[0] {
		t.Fatalf("raw ref mismatch")
	}
}

func TestDecoderStakeAndProjectPool(t *testing.T) {
	gameABI, err := ABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewDecoder(DecoderConfig{})
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	creator := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	amount, _ := new(big.Int).SetString("30000000000000000000", 10)
	stakeData, err := gameABI.Events["StakeDeposited"].Inputs.NonIndexed().Pack(amount, big.NewInt(3))
	if err != nil {
		t.Fatalf("pack stake: %v", err)
	}
	stake, err := decoder.Decode(buildLogRecord(gameABI.Events["StakeDeposited"].ID, stakeData, []common.Hash{topicFromAddress(creator)}))
	if err != nil {
		t.Fatalf("decode stake: %v", err)
	}
	if stake.Fields["amount"] != "30000000000000000000" || stake.Fields["poolsEligible"] != "3" {
		t.Fatalf("stake fields mismatch: %+v", stake.Fields)
	}

	projectData, err := gameABI.Events["ProjectPoolUpdated"].Inputs.NonIndexed().Pack(big.NewInt(500))
	if err != nil {
		t.Fatalf("pack project pool: %v", err)
	}
	project, err := decoder.Decode(buildLogRecord(gameABI.Events["ProjectPoolUpdated"].ID, projectData, nil))
	if err != nil {
		t.Fatalf("decode project pool: %v", err)
	}
	if project.Fields["totalProjectPool"] != "500" {
		t.Fatalf("project pool mismatch: %+v", project.Fields)
	}
}

func TestDecoderRejectsBadLogs(t *testing.T) {
	gameABI, err := ABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewDecoder(DecoderConfig{})
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	if decoder.CanDecode("0xdeadbeef") {
		t.Fatalf("unknown topic accepted")
	}
	if _, err := decoder.Decode(model.LogRecord{}); err == nil {
		t.Fatalf("expected missing topics error")
	}

	// PoolCreated carries two indexed topics
	data, err := gameABI.Events["PoolCreated"].Inputs.NonIndexed().Pack(big.NewInt(1), big.NewInt(4))
	if err != nil {
		t.Fatalf("pack pool created: %v", err)
	}
	short := buildLogRecord(gameABI.Events["PoolCreated"].ID, data, []common.Hash{common.BigToHash(big.NewInt(1))})
	if _, err := decoder.Decode(short); err == nil {
		t.Fatalf("expected topic count error")
	}

	badChoice, err := gameABI.Events["PlayerMadeChoice"].Inputs.NonIndexed().Pack(uint8(7), big.NewInt(1))
	if err != nil {
		t.Fatalf("pack choice: %v", err)
	}
	choiceLog := buildLogRecord(gameABI.Events["PlayerMadeChoice"].ID, badChoice, []common.Hash{
		common.BigToHash(big.NewInt(1)),
		topicFromAddress(contract),
	})
	if _, err := decoder.Decode(choiceLog); err == nil {
		t.Fatalf("expected invalid choice error")
	}
}

func TestDecoderTopic0Alias(t *testing.T) {
	alias := "0x" + strings.Repeat("ab", 32)
	decoder, err := NewDecoder(DecoderConfig{Topic0Map: map[string]string{alias: "scopeupdated"}})
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}
	if !decoder.CanDecode(strings.ToUpper(alias[:2]) + alias[2:]) {
		t.Fatalf("alias not registered")
	}
	if len(decoder.Topics()) != 16 {
		t.Fatalf("expected 16 topics, got %d", len(decoder.Topics()))
	}

	if _, err := NewDecoder(DecoderConfig{Topic0Map: map[string]string{alias: "Swap"}}); err == nil {
		t.Fatalf("expected unsupported name error")
	}
}

func buildLogRecord(topic0 common.Hash, data []byte, indexed []common.Hash) model.LogRecord {
	topics := make([]string, 0, len(indexed)+1)
	topics = append(topics, topic0.Hex())
	for _, topic := range indexed {
		topics = append(topics, topic.Hex())
	}

	return model.LogRecord{
		ChainID:     56,
		BlockNumber: 12345,
		BlockHash:   "0xabc",
		TxHash:      "0xdef",
		LogIndex:    1,
		Address:     contract.Hex(),
		Topics:      topics,
		Data:        hexutil.Encode(data),
		Timestamp:   1700000000,
	}
}

func topicFromAddress(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}
