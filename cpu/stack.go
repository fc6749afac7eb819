package cpu

// The data stack grows down from the top of memory. Its empty sentinel is
// one past the last word. The return stack grows up from its base, which is
// RETURN_STACK_OFFSET words below the top of memory. A stack may never
// reach into the other's words.
//
// Every data stack operation moves values through the accumulator. The
// compound operations use the accumulator as scratch, and restore it before
// returning, so only stack contents are ever observed to change.

// StackBase returns the empty data stack sentinel.
func (cpu *Cpu) StackBase() int {
	return len(cpu.Memory)
}

// ReturnBase returns the empty return stack sentinel.
func (cpu *Cpu) ReturnBase() int {
	return len(cpu.Memory) - 1 - RETURN_STACK_OFFSET
}

// StackDepth returns the number of values on the data stack.
func (cpu *Cpu) StackDepth() int {
	return cpu.StackBase() - cpu.Sp
}

// Stack returns the data stack contents, top first.
func (cpu *Cpu) Stack() (values []int) {
	for sp := cpu.Sp; sp >= 0 && sp < cpu.StackBase(); sp++ {
		values = append(values, int(cpu.Memory[sp]))
	}
	return
}

// ReturnStack returns the return stack contents, top first.
func (cpu *Cpu) ReturnStack() (values []int) {
	for rp := cpu.Rap; rp > cpu.ReturnBase() && rp < len(cpu.Memory); rp-- {
		values = append(values, int(cpu.Memory[rp]))
	}
	return
}

// push stores the accumulator on the data stack.
func (cpu *Cpu) push() (err error) {
	if cpu.Sp-1 <= cpu.Rap || cpu.Sp-1 >= len(cpu.Memory) {
		err = ErrBadStack
		return
	}

	cpu.Sp--
	cpu.Memory[cpu.Sp] = Code(cpu.Accumulator)
	return
}

// pop loads the top of the data stack into the accumulator.
func (cpu *Cpu) pop() (err error) {
	if cpu.Sp >= cpu.StackBase() || cpu.Sp < 0 {
		err = ErrBadStack
		return
	}

	cpu.Accumulator = int(cpu.Memory[cpu.Sp])
	cpu.Sp++
	return
}

// pushReturn stores an address on the return stack.
func (cpu *Cpu) pushReturn(ip int) (err error) {
	if cpu.Rap+1 >= cpu.Sp || cpu.Rap+1 <= cpu.ReturnBase() {
		err = ErrBadStack
		return
	}

	cpu.Rap++
	cpu.Memory[cpu.Rap] = Code(ip)
	return
}

// popReturn loads the top of the return stack into the program counter.
func (cpu *Cpu) popReturn() (err error) {
	if cpu.Rap <= cpu.ReturnBase() || cpu.Rap >= len(cpu.Memory) {
		err = ErrBadStack
		return
	}

	cpu.Pc = int(cpu.Memory[cpu.Rap])
	cpu.Rap--
	return
}

// scratch runs fn with the accumulator as a scratch register.
func (cpu *Cpu) scratch(fn func() error) error {
	saved := cpu.Accumulator
	defer func() { cpu.Accumulator = saved }()

	return fn()
}

// pop2 pops the right hand operand, then the left.
func (cpu *Cpu) pop2() (left, right int, err error) {
	err = cpu.pop()
	if err != nil {
		return
	}
	right = cpu.Accumulator

	err = cpu.pop()
	if err != nil {
		return
	}
	left = cpu.Accumulator

	return
}

func (cpu *Cpu) stackDup() error {
	return cpu.scratch(func() (err error) {
		err = cpu.pop()
		if err != nil {
			return
		}
		err = cpu.push()
		if err != nil {
			return
		}
		return cpu.push()
	})
}

func (cpu *Cpu) stackDrop() error {
	return cpu.scratch(cpu.pop)
}

func (cpu *Cpu) stackSwap() error {
	return cpu.scratch(func() (err error) {
		second, first, err := cpu.pop2()
		if err != nil {
			return
		}
		cpu.Accumulator = first
		err = cpu.push()
		if err != nil {
			return
		}
		cpu.Accumulator = second
		return cpu.push()
	})
}

// stackBinary replaces the top two values with fn(left, right), clamped.
func (cpu *Cpu) stackBinary(fn func(left, right int) (int, error)) error {
	return cpu.scratch(func() (err error) {
		left, right, err := cpu.pop2()
		if err != nil {
			return
		}
		result, err := fn(left, right)
		if err != nil {
			return
		}
		cpu.Accumulator = clamp(result)
		return cpu.push()
	})
}

// call pops the target off the data stack and jumps to it, saving the
// program counter on the return stack. On fault both stacks are unchanged.
func (cpu *Cpu) call() error {
	return cpu.scratch(func() (err error) {
		err = cpu.pop()
		if err != nil {
			return
		}
		target := cpu.Accumulator
		err = cpu.pushReturn(cpu.Pc)
		if err != nil {
			// The target word is still in memory; put it back.
			cpu.Sp--
			return
		}
		cpu.Pc = target
		return
	})
}

func stackAdd(left, right int) (int, error) {
	return left + right, nil
}

func stackSub(left, right int) (int, error) {
	return left - right, nil
}

func stackMul(left, right int) (int, error) {
	return left * right, nil
}

func stackDiv(left, right int) (int, error) {
	if right == 0 {
		return 0, ErrDivisionByZero
	}
	return left / right, nil
}

func stackMax(left, right int) (int, error) {
	return max(left, right), nil
}

func stackMin(left, right int) (int, error) {
	return min(left, right), nil
}
