package montecarlo

import (
	"snowball/loader"
	"snowball/model"
	"snowball/structure"
)

// Options 蒙特卡洛评估选项
type Options struct {
	BlockSize    int
	IncludePaths bool
}

// PathResult 单条路径的评估结果
type PathResult struct {
	Index int `json:"index"`
	structure.PathReport
}

// Report 蒙特卡洛评估报告
type Report struct {
	Params       structure.Params       `json:"params"`
	Horizon      int                    `json:"horizon"`
	Schedule     structure.Schedule     `json:"schedule"`
	Summary      structure.Summary      `json:"summary"`
	Distribution structure.Distribution `json:"distribution"`
	Paths        []PathResult           `json:"paths,omitempty"`
}

// Run 校验参数并评估蒙特卡洛文档
func Run(doc *model.MonteCarloDocument, opts Options) (Report, error) {
	params, err := loader.MonteCarloParams(doc.Parameter, opts.BlockSize)
	if err != nil {
		return Report{}, err
	}
	if err := params.Validate(); err != nil {
		return Report{}, err
	}
	paths, err := loader.MonteCarloPaths(doc)
	if err != nil {
		return Report{}, err
	}

	sess := structure.NewSession(params)
	if opts.BlockSize > 0 {
		sess.BlockSize = opts.BlockSize
	}
	return Evaluate(sess, paths, opts.IncludePaths), nil
}

// Evaluate 逐条路径判定并汇总。敲出表按路径长度推导，较短路径的敲出表是最长路径敲出表的前缀。
func Evaluate(sess *structure.Session, paths []structure.Path, withPaths bool) Report {
	horizon := 0
	for _, p := range paths {
		if d := p.LastDay(); d > horizon {
			horizon = d
		}
	}

	rep := Report{
		Params:   sess.Params,
		Horizon:  horizon,
		Schedule: sess.SimulatedSchedule(horizon),
	}

	cache := map[int]structure.Schedule{horizon: rep.Schedule}
	evals := make([]structure.Evaluation, 0, len(paths))
	for i, p := range paths {
		sched, ok := cache[p.LastDay()]
		if !ok {
			sched = sess.SimulatedSchedule(p.LastDay())
			cache[p.LastDay()] = sched
		}
		evals = append(evals, sess.Evaluate(p, sched))
		if withPaths {
			rep.Paths = append(rep.Paths, PathResult{Index: i, PathReport: sess.Describe(p, sched)})
		}
	}

	rep.Summary = structure.Summarize(evals)
	rep.Distribution = structure.Distribute(rep.Schedule, evals)
	return rep
}
