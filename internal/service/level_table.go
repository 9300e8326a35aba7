package service

import (
	"fmt"
	"strings"

	"github.com/furom/internal/config"
)

// Level 用户等级
type Level struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	MinExp int    `json:"min_exp"`
}

// LevelTable 升序等级阈值表
type LevelTable struct {
	levels []Level
}

// NewLevelTable 校验并创建等级表：非空、首档为 0、阈值严格递增
func NewLevelTable(entries []config.LevelConfig) (*LevelTable, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: empty table", ErrInvalidLevelTable)
	}
	levels := make([]Level, 0, len(entries))
	for i, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: level %d has no name", ErrInvalidLevelTable, i+1)
		}
		if i == 0 && entry.MinExp != 0 {
			return nil, fmt.Errorf("%w: first threshold must be 0", ErrInvalidLevelTable)
		}
		if i > 0 && entry.MinExp <= levels[i-1].MinExp {
			return nil, fmt.Errorf("%w: threshold %d not ascending", ErrInvalidLevelTable, entry.MinExp)
		}
		levels = append(levels, Level{Number: i + 1, Name: name, MinExp: entry.MinExp})
	}
	return &LevelTable{levels: levels}, nil
}

// MustLevelTable 创建等级表，配置非法时 panic
func MustLevelTable(entries []config.LevelConfig) *LevelTable {
	table, err := NewLevelTable(entries)
	if err != nil {
		panic(err)
	}
	return table
}

// LevelFor 返回阈值不超过 exp 的最高等级
func (t *LevelTable) LevelFor(exp int) Level {
	if exp < 0 {
		exp = 0
	}
	current := t.levels[0]
	for _, level := range t.levels[1:] {
		if level.MinExp > exp {
			break
		}
		current = level
	}
	return current
}

// NextLevel 返回下一等级，已满级时 ok 为 false
func (t *LevelTable) NextLevel(exp int) (Level, bool) {
	for _, level := range t.levels {
		if level.MinExp > exp {
			return level, true
		}
	}
	return Level{}, false
}

// Levels 返回等级表副本
func (t *LevelTable) Levels() []Level {
	return append([]Level(nil), t.levels...)
}

// LevelProgress 等级进度展示
type LevelProgress struct {
	Exp       int    `json:"exp"`
	Level     Level  `json:"level"`
	Next      *Level `json:"next,omitempty"`
	ExpToNext int    `json:"exp_to_next"`
}

// Progress 计算当前等级与距下一级所需经验
func (t *LevelTable) Progress(exp int) LevelProgress {
	progress := LevelProgress{Exp: exp, Level: t.LevelFor(exp)}
	if next, ok := t.NextLevel(exp); ok {
		progress.Next = &next
		progress.ExpToNext = next.MinExp - exp
	}
	return progress
}
