// Package script drives the front end from Lua stimulus scripts.
//
// A script sees the clock, reset and input ports of the core as global
// functions:
//
//	release()
//	tick(3)
//	expect(pc() == 2, "sequential fetch")
//	jump(0)
//	writeback(5, 99, true)
//	tick()
//	expect(reg(5) == 99, "write on edge")
package script

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"

	"github.com/sarchlab/rvfront/emu"
	"github.com/sarchlab/rvfront/timing/core"
	"github.com/sarchlab/rvfront/timing/signal"
)

// ErrExpectation is returned when a script's expect() fails.
var ErrExpectation = errors.New("script expectation failed")

// Engine runs scripts against one core.
type Engine struct {
	core   *core.Core
	logger logrus.FieldLogger

	failure string
}

// New creates an Engine for c.
func New(c *core.Core, logger logrus.FieldLogger) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{
		core:   c,
		logger: logger,
	}
}

// RunFile runs the script at path.
func (e *Engine) RunFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	return e.Run(ctx, path, string(src))
}

// Run executes src. name identifies the script in errors and logs.
func (e *Engine) Run(ctx context.Context, name, src string) error {
	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)

	e.failure = ""
	e.register(L, name)

	if err := L.DoString(src); err != nil {
		if e.failure != "" {
			return fmt.Errorf("%s: %s: %w", name, e.failure, ErrExpectation)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", name, ctxErr)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (e *Engine) register(L *lua.LState, name string) {
	pipe := e.core.Pipeline

	funcs := map[string]lua.LGFunction{
		"tick": func(L *lua.LState) int {
			n := L.OptInt(1, 1)
			if n < 0 {
				L.ArgError(1, "cycle count must be >= 0")
			}
			for i := 0; i < n; i++ {
				e.core.Tick()
				if e.core.Faulted() {
					break
				}
			}
			L.Push(lua.LBool(!e.core.Faulted()))
			return 1
		},
		"reset": func(L *lua.LState) int {
			pipe.AssertReset()
			return 0
		},
		"release": func(L *lua.LState) int {
			pipe.ReleaseReset()
			return 0
		},
		"jump": func(L *lua.LState) int {
			pipe.SetJump(checkWord(L, 1))
			return 0
		},
		"sequential": func(L *lua.LState) int {
			pipe.ClearJump()
			return 0
		},
		"writeback": func(L *lua.LState) int {
			addr := L.CheckInt(1)
			if addr < 0 || addr >= emu.NumRegs {
				L.ArgError(1, "register index out of range")
			}
			pipe.SetWriteBack(uint8(addr), checkWord(L, 2), L.OptBool(3, true))
			return 0
		},
		"pc": func(L *lua.LState) int {
			L.Push(lua.LNumber(pipe.PC()))
			return 1
		},
		"pc_addr": func(L *lua.LState) int {
			L.Push(lua.LNumber(pipe.PCAddr()))
			return 1
		},
		"instruction": func(L *lua.LState) int {
			L.Push(lua.LNumber(pipe.Outputs().Instruction))
			return 1
		},
		"immediate": func(L *lua.LState) int {
			L.Push(lua.LNumber(pipe.Outputs().Immediate))
			return 1
		},
		"ifid": func(L *lua.LState) int {
			L.Push(lua.LString(fmt.Sprintf("0x%016x", pipe.Outputs().IFID)))
			return 1
		},
		"rda": func(L *lua.LState) int {
			L.Push(lua.LNumber(pipe.Outputs().RDA))
			return 1
		},
		"rdb": func(L *lua.LState) int {
			L.Push(lua.LNumber(pipe.Outputs().RDB))
			return 1
		},
		"reg": func(L *lua.LState) int {
			idx := L.CheckInt(1)
			if idx < 0 || idx >= emu.NumRegs {
				L.ArgError(1, "register index out of range")
			}
			L.Push(lua.LNumber(e.core.RegFile().ReadReg(uint8(idx))))
			return 1
		},
		"control": func(L *lua.LState) int {
			out := pipe.Outputs()
			t := L.NewTable()
			L.SetField(t, "alu_src", lua.LBool(out.Control.ALUSrc))
			L.SetField(t, "mem_to_reg", lua.LBool(out.Control.MemToReg))
			L.SetField(t, "reg_write", lua.LBool(out.Control.RegWrite))
			L.SetField(t, "mem_read", lua.LBool(out.Control.MemRead))
			L.SetField(t, "mem_write", lua.LBool(out.Control.MemWrite))
			L.SetField(t, "branch", lua.LBool(out.Control.Branch))
			L.SetField(t, "alu_op", lua.LNumber(out.Control.ALUOp))
			L.SetField(t, "undefined", lua.LBool(out.Undefined))
			L.Push(t)
			return 1
		},
		"running": func(L *lua.LState) int {
			L.Push(lua.LBool(pipe.Phase() == signal.PhaseRun))
			return 1
		},
		"cycle": func(L *lua.LState) int {
			L.Push(lua.LNumber(e.core.Stats().Cycles))
			return 1
		},
		"log": func(L *lua.LState) int {
			e.logger.WithFields(logrus.Fields{
				"script": name,
				"cycle":  e.core.Stats().Cycles,
			}).Info(L.CheckString(1))
			return 0
		},
		"expect": func(L *lua.LState) int {
			if lua.LVAsBool(L.Get(1)) {
				return 0
			}
			msg := L.OptString(2, "expectation failed")
			e.failure = fmt.Sprintf("cycle %d: %s", e.core.Stats().Cycles, msg)
			L.RaiseError("%s", e.failure)
			return 0
		},
	}

	for fname, fn := range funcs {
		L.SetGlobal(fname, L.NewFunction(fn))
	}
}

func checkWord(L *lua.LState, n int) uint32 {
	v := L.CheckNumber(n)
	if v < 0 || v > lua.LNumber(^uint32(0)) {
		L.ArgError(n, "value must fit in 32 bits")
	}
	return uint32(v)
}
