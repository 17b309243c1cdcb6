package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Number 参数数值：可以是 JSON 数字、数字字符串、空字符串或 null
type Number struct {
	decimal.NullDecimal
}

// NewNumber 构造有效数值
func NewNumber(v float64) Number {
	return Number{decimal.NewNullDecimal(decimal.NewFromFloat(v))}
}

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*n = Number{}
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = Number{}
			return nil
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", string(b), err)
	}
	*n = Number{decimal.NewNullDecimal(d)}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(n.Decimal.String()), nil
}

// Float 转为 float64，无效时 ok=false
func (n Number) Float() (float64, bool) {
	if !n.Valid {
		return 0, false
	}
	return n.Decimal.InexactFloat64(), true
}

// Int 转为整数（截断小数部分）
func (n Number) Int() (int, bool) {
	if !n.Valid {
		return 0, false
	}
	return int(n.Decimal.IntPart()), true
}

// TimestampLayouts 字符串日期支持的格式
var TimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

// Timestamp 日期：毫秒时间戳或日期字符串，统一为 UTC
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*t = Timestamp{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := ParseTimestamp(s)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}
	var ms json.Number
	if err := json.Unmarshal(b, &ms); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", string(b), err)
	}
	f, err := ms.Float64()
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", string(b), err)
	}
	*t = Timestamp{time.UnixMilli(int64(f)).UTC()}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format("2006-01-02"))
}

// ParseTimestamp 解析日期字符串，空字符串返回零值
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, nil
	}
	for _, layout := range TimestampLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			return Timestamp{v.UTC()}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid date: %s", s)
}

// Parameter 输入文件中的结构参数块
type Parameter struct {
	Structure string `json:"structureInput"`
	Code      string `json:"codeInput,omitempty"`

	Duration         Number `json:"durationInput"`
	StartObservation Number `json:"start_obInput"`
	StartStepDown    Number `json:"start_sdInput"`

	KnockIn   Number `json:"kiInput" validate:"omitempty,gte=0"`
	KnockOut  Number `json:"koInput" validate:"required,gt=0"`
	StepDown  Number `json:"sdInput" validate:"omitempty,gte=0"`
	Parachute Number `json:"parachuteInput" validate:"omitempty,gte=0"`

	DividendCoupon Number `json:"div_couponInput"`
	KOCoupon       Number `json:"ko_couponInput"`
	KOCoupon2      Number `json:"ko_coupon2Input"`
	Coupon2Period  Number `json:"coupon2_periodInput"`
	KOCoupon3      Number `json:"ko_coupon3Input"`
	Coupon3Period  Number `json:"coupon3_periodInput"`
	Guaranteed     Number `json:"guaranteedInput" validate:"omitempty,gte=0"`
	LimitedLoss    Number `json:"limitedlossInput" validate:"omitempty,gte=0"`

	StartDate string `json:"sdateInput,omitempty"`
	EndDate   string `json:"edateInput,omitempty"`
}

// MonteCarloDocument 蒙特卡洛输入文件。路径价格已按期初价格归一化。
type MonteCarloDocument struct {
	Parameter Parameter   `json:"parameter"`
	Path      [][]float64 `json:"path" validate:"required,min=1,dive,min=1"`
}

// RecordState 回测记录中的合约状态
type RecordState string

const (
	StateKO         RecordState = "ko"
	StateNoKINoKO   RecordState = "noki_noko"
	StateKIKO       RecordState = "ki_ko"
	StateKINoKO     RecordState = "ki_noko"
	StateActiveKI   RecordState = "active_ki"
	StateActiveNoKI RecordState = "active_noki"
)

// RecordStates 全部记录状态（固定顺序）
var RecordStates = []RecordState{StateKO, StateNoKINoKO, StateKIKO, StateKINoKO, StateActiveKI, StateActiveNoKI}

// Ended 合约是否已了结
func (s RecordState) Ended() bool {
	return s == StateKO || s == StateNoKINoKO || s == StateKIKO || s == StateKINoKO
}

// BacktestRecord 回测结果中的一行（一个起始日）
type BacktestRecord struct {
	StartDate     Timestamp   `json:"start_date" validate:"required"`
	Close         *float64    `json:"close"`
	Payoff        *float64    `json:"payoff"`
	State         RecordState `json:"state" validate:"omitempty,oneof=ko noki_noko ki_ko ki_noko active_ki active_noki"`
	ActualEndDate Timestamp   `json:"actual_end_date"`
}

// BacktestDocument 回测输入文件
type BacktestDocument struct {
	Parameter Parameter                 `json:"parameter"`
	Result    map[string]BacktestRecord `json:"result" validate:"required,min=1,dive"`
}
