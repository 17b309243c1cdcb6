package structure

// DefaultBlockSize 一个观察月对应的交易日数
const DefaultBlockSize = 21

// DefaultSearchDays 观察日缺失时向后查找交易日的最大天数
const DefaultSearchDays = 31

// MaxDuration 合约期限上限（月）
const MaxDuration = 120

// Session 一次分析会话：结构参数只读，所有推导都是参数与输入的纯函数
type Session struct {
	Params     Params
	BlockSize  int
	SearchDays int

	// OnDropped is called for every observation dropped from a calendar
	// schedule. May be nil.
	OnDropped func(Observation)
}

// NewSession 创建会话
func NewSession(p Params) *Session {
	return &Session{
		Params:     p,
		BlockSize:  DefaultBlockSize,
		SearchDays: DefaultSearchDays,
	}
}

func (s *Session) blockSize() int {
	if s.BlockSize <= 0 {
		return DefaultBlockSize
	}
	return s.BlockSize
}

func (s *Session) searchDays() int {
	if s.SearchDays <= 0 {
		return DefaultSearchDays
	}
	return s.SearchDays
}

func (s *Session) firstPeriod() int {
	if s.Params.StartObservation < 1 {
		return 1
	}
	return s.Params.StartObservation
}
