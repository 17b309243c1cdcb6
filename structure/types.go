package structure

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Type 雪球结构类型
type Type string

const (
	TypeClassic        Type = "classic"
	TypeEarlyProfit    Type = "earlyprofit"
	TypePhoenix        Type = "phoenix"
	TypeStepDown       Type = "stepdown"
	TypeDoubleStepDown Type = "doublestepdown"
	TypeAutocall       Type = "autocall"
	TypePut            Type = "put"
	TypeParachute      Type = "parachute"
)

// Types 全部结构类型（固定顺序）
var Types = []Type{
	TypeClassic,
	TypeEarlyProfit,
	TypePhoenix,
	TypeStepDown,
	TypeDoubleStepDown,
	TypeAutocall,
	TypePut,
	TypeParachute,
}

// ParseType 解析结构类型，空字符串视为 classic
func ParseType(s string) (Type, error) {
	v := Type(strings.ToLower(strings.TrimSpace(s)))
	if v == "" {
		return TypeClassic, nil
	}
	for _, t := range Types {
		if t == v {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown structure type: %s", s)
}

// HasKnockIn 是否存在敲入线（小雪球与保底雪球没有）
func (t Type) HasKnockIn() bool {
	return t != TypeAutocall && t != TypePut
}

// IsStepDown 是否为降敲结构
func (t Type) IsStepDown() bool {
	return t == TypeStepDown || t == TypeDoubleStepDown
}

// Coupons 票息相关字段，只参与输入校验
type Coupons struct {
	KO          decimal.NullDecimal `json:"ko_coupon"`
	Dividend    decimal.NullDecimal `json:"dividend_coupon"`
	KO2         decimal.NullDecimal `json:"ko_coupon_2"`
	Period2     int                 `json:"coupon_2_period,omitempty"`
	KO3         decimal.NullDecimal `json:"ko_coupon_3"`
	Period3     int                 `json:"coupon_3_period,omitempty"`
	Guaranteed  decimal.NullDecimal `json:"guaranteed"`
	LimitedLoss decimal.NullDecimal `json:"limited_loss"`
}

// Params 结构参数。障碍价均为期初价格的比例。
type Params struct {
	Type             Type                `json:"structure"`
	KnockIn          decimal.NullDecimal `json:"knock_in"`
	KnockOut         decimal.Decimal     `json:"knock_out"`
	StartObservation int                 `json:"start_observation"`
	Duration         int                 `json:"duration"`
	StepDown         decimal.NullDecimal `json:"step_down"`
	// StepDownStart is the first period whose barrier is stepped down; 0 means
	// the period right after the first observation.
	StepDownStart  int                 `json:"step_down_start,omitempty"`
	ParachuteFinal decimal.NullDecimal `json:"parachute_final"`
	Coupons        Coupons             `json:"coupons"`
}

// Classification 路径终态
type Classification string

const (
	KnockedOut          Classification = "knockedOut"
	KnockedInNoKnockOut Classification = "knockedInNoKnockOut"
	NoKnockInNoKnockOut Classification = "noKnockInNoKnockOut"
	ActiveKnockedIn     Classification = "activeKnockedIn"
	ActiveNoKnockIn     Classification = "activeNoKnockIn"
)

// Classifications 全部终态（固定顺序，用于统计表）
var Classifications = []Classification{
	KnockedOut,
	KnockedInNoKnockOut,
	NoKnockInNoKnockOut,
	ActiveKnockedIn,
	ActiveNoKnockIn,
}

// IsActive 合约是否仍未了结
func (c Classification) IsActive() bool {
	return c == ActiveKnockedIn || c == ActiveNoKnockIn
}

// KnockedIn 是否曾敲入（不含已敲出）
func (c Classification) KnockedIn() bool {
	return c == KnockedInNoKnockOut || c == ActiveKnockedIn
}

// Path 价格路径
type Path struct {
	Prices []float64 `json:"prices"`
	// Origin is the day number of Prices[0]: 1 for simulated paths, 0 for
	// calendar windows that start on the contract start date.
	Origin int `json:"origin"`
	// Initial overrides Prices[0] as the reference price when non-zero.
	Initial float64 `json:"initial,omitempty"`
	// Open marks a contract whose horizon has not elapsed inside the data.
	Open bool `json:"open,omitempty"`
}

// SimulatedPath 蒙特卡洛路径，第一个价格为第1个交易日
func SimulatedPath(prices []float64) Path {
	return Path{Prices: prices, Origin: 1}
}

// InitialPrice 期初价格
func (p Path) InitialPrice() float64 {
	if p.Initial > 0 {
		return p.Initial
	}
	if len(p.Prices) == 0 {
		return 0
	}
	return p.Prices[0]
}

// LastDay 路径最后一个价格对应的交易日
func (p Path) LastDay() int {
	if len(p.Prices) == 0 {
		return 0
	}
	return len(p.Prices) - 1 + p.Origin
}

// Terminal 路径终值
func (p Path) Terminal() float64 {
	if len(p.Prices) == 0 {
		return math.NaN()
	}
	return p.Prices[len(p.Prices)-1]
}

// Entry 一个敲出观察点
type Entry struct {
	Period  int             `json:"period"`
	Day     int             `json:"day"`
	Index   int             `json:"index"`
	Date    string          `json:"date,omitempty"`
	Barrier decimal.Decimal `json:"barrier"`
}

// DropReason 观察日被丢弃的原因
type DropReason string

const (
	DropNoTradingDate DropReason = "no_trading_date"
	DropDuplicate     DropReason = "duplicate"
)

// Observation 未进入敲出表的观察期
type Observation struct {
	Period    int        `json:"period"`
	Candidate string     `json:"candidate,omitempty"`
	Day       int        `json:"day,omitempty"`
	Reason    DropReason `json:"reason,omitempty"`
}

// Diagnostics 敲出表推导诊断信息
type Diagnostics struct {
	// Dropped holds observations whose date could not be matched in the series.
	Dropped []Observation `json:"dropped,omitempty"`
	// Pending holds observations beyond the available data (open contracts).
	// Simulated schedules keep only the first one.
	Pending []Observation `json:"pending,omitempty"`
	// Remaining counts every observation beyond the available data.
	Remaining int `json:"remaining,omitempty"`
}

// Schedule 敲出观察表
type Schedule struct {
	Entries     []Entry     `json:"entries"`
	Diagnostics Diagnostics `json:"diagnostics"`
}
