package structure

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Field 结构参数字段
type Field string

const (
	FieldKnockIn        Field = "knock_in"
	FieldKnockOut       Field = "knock_out"
	FieldStepDown       Field = "step_down"
	FieldStepDownStart  Field = "step_down_start"
	FieldParachuteFinal Field = "parachute_final"
	FieldKOCoupon2      Field = "ko_coupon_2"
	FieldCoupon2Period  Field = "coupon_2_period"
	FieldKOCoupon3      Field = "ko_coupon_3"
	FieldCoupon3Period  Field = "coupon_3_period"
	FieldGuaranteed     Field = "guaranteed"
	FieldLimitedLoss    Field = "limited_loss"
)

// FieldSpec 某结构需要/允许填写的字段
type FieldSpec struct {
	Required []Field `json:"required"`
	Optional []Field `json:"optional,omitempty"`
}

// Requirements 各结构的字段要求表
var Requirements = map[Type]FieldSpec{
	TypeClassic:     {Required: []Field{FieldKnockIn}},
	TypeEarlyProfit: {Required: []Field{FieldKnockIn}, Optional: []Field{FieldKOCoupon2, FieldCoupon2Period, FieldKOCoupon3, FieldCoupon3Period}},
	TypePhoenix:     {Required: []Field{FieldKnockIn}},
	TypeStepDown:    {Required: []Field{FieldKnockIn, FieldStepDown}, Optional: []Field{FieldStepDownStart}},
	TypeDoubleStepDown: {
		Required: []Field{FieldKnockIn, FieldStepDown},
		Optional: []Field{FieldStepDownStart, FieldKOCoupon2, FieldCoupon2Period, FieldKOCoupon3, FieldCoupon3Period},
	},
	TypeAutocall:  {Required: []Field{FieldGuaranteed}},
	TypePut:       {Required: []Field{FieldLimitedLoss}},
	TypeParachute: {Required: []Field{FieldKnockIn, FieldParachuteFinal}},
}

var fieldMessages = map[Field]string{
	FieldKnockIn:        "请输入有效的敲入价格",
	FieldStepDown:       "请输入有效的降敲幅度",
	FieldParachuteFinal: "请输入有效的降落伞最后一个月敲出线",
	FieldGuaranteed:     "请输入有效的小雪球保底票息",
	FieldLimitedLoss:    "请输入有效的保底雪球保底线",
}

// Issue 单个校验问题
type Issue struct {
	Field   Field  `json:"field"`
	Message string `json:"message"`
}

// ValidationError 参数校验失败，包含全部问题
type ValidationError struct {
	Issues []Issue `json:"issues"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		msgs = append(msgs, string(is.Field)+": "+is.Message)
	}
	return "invalid structure parameters: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(f Field, msg string) {
	e.Issues = append(e.Issues, Issue{Field: f, Message: msg})
}

// Validate 按字段要求表与通用规则校验参数；推导函数本身不做校验。
func (p Params) Validate() error {
	ve := &ValidationError{}

	req, ok := Requirements[p.Type]
	if !ok {
		ve.add("structure", "未知的结构类型: "+string(p.Type))
		return ve
	}

	if p.Duration < 1 {
		ve.add("duration", "请输入有效的合约期限（大于等于1的整数）")
	} else if p.Duration > MaxDuration {
		ve.add("duration", fmt.Sprintf("合约期限不能超过%d个月", MaxDuration))
	}
	if p.StartObservation < 1 || p.StartObservation > p.Duration {
		ve.add("start_observation", "请输入有效的开始观察月（大于等于1且小于等于合约期限的整数）")
	}
	if !p.KnockOut.IsPositive() {
		ve.add(FieldKnockOut, "请输入有效的敲出价格")
	}

	for _, f := range req.Required {
		if !p.has(f) {
			ve.add(f, fieldMessages[f])
		}
	}

	for f, v := range map[Field]decimal.NullDecimal{
		FieldKnockIn:        p.KnockIn,
		FieldStepDown:       p.StepDown,
		FieldParachuteFinal: p.ParachuteFinal,
		FieldGuaranteed:     p.Coupons.Guaranteed,
		FieldLimitedLoss:    p.Coupons.LimitedLoss,
	} {
		if v.Valid && v.Decimal.IsNegative() {
			ve.add(f, "不能为负数")
		}
	}

	if p.Type.IsStepDown() && p.StepDownStart > 0 {
		if !p.StepDown.Valid {
			ve.add(FieldStepDown, "降敲起始月与降敲幅度不匹配，请补充降敲幅度")
		}
		if p.StepDownStart < p.StartObservation {
			ve.add(FieldStepDownStart, "降敲起始月应大于或等于开始观察月")
		}
	}

	if len(ve.Issues) > 0 {
		sortIssues(ve.Issues)
		return ve
	}
	return nil
}

func (p Params) has(f Field) bool {
	switch f {
	case FieldKnockIn:
		return p.KnockIn.Valid
	case FieldKnockOut:
		return p.KnockOut.IsPositive()
	case FieldStepDown:
		return p.StepDown.Valid
	case FieldStepDownStart:
		return p.StepDownStart > 0
	case FieldParachuteFinal:
		return p.ParachuteFinal.Valid
	case FieldKOCoupon2:
		return p.Coupons.KO2.Valid
	case FieldCoupon2Period:
		return p.Coupons.Period2 > 0
	case FieldKOCoupon3:
		return p.Coupons.KO3.Valid
	case FieldCoupon3Period:
		return p.Coupons.Period3 > 0
	case FieldGuaranteed:
		return p.Coupons.Guaranteed.Valid
	case FieldLimitedLoss:
		return p.Coupons.LimitedLoss.Valid
	}
	return false
}

// sortIssues keeps map-driven checks deterministic.
func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Field < issues[j].Field })
}
