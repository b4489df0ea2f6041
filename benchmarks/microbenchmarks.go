package benchmarks

// GetMicrobenchmarks returns the standard set of microbenchmarks. Each one
// stresses a different part of the CPU core.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticLoop(),
		stringCopy(),
		multiplyDivide(),
		callReturn(),
		branchMix(),
	}
}

// 1. ADD in a LOOP. AX = 3 * 1000.
func arithmeticLoop() Benchmark {
	return Benchmark{
		Name:        "arithmetic_loop",
		Description: "1000 iterations of ADD AX, imm16 under LOOP",
		Program: []byte{
			0xB9, 0xE8, 0x03, // mov cx, 1000
			0x31, 0xC0, // xor ax, ax
			0x05, 0x03, 0x00, // l: add ax, 3
			0xE2, 0xFB, // loop l
			0xF4, // hlt
		},
		ExpectedAX: 3000,
	}
}

// 2. REP MOVSW over 4 KiB. AX = final DI.
func stringCopy() Benchmark {
	return Benchmark{
		Name:        "string_copy",
		Description: "REP MOVSW copying 2048 words",
		Program: []byte{
			0xBE, 0x00, 0x20, // mov si, 0x2000
			0xBF, 0x00, 0x30, // mov di, 0x3000
			0xB9, 0x00, 0x08, // mov cx, 0x800
			0xFC,       // cld
			0xF3, 0xA5, // rep movsw
			0x89, 0xF8, // mov ax, di
			0xF4, // hlt
		},
		ExpectedAX: 0x4000,
	}
}

// 3. MUL then DIV by the same value, so AX ends as the last CX.
func multiplyDivide() Benchmark {
	return Benchmark{
		Name:        "multiply_divide",
		Description: "500 MUL/DIV pairs",
		Program: []byte{
			0xB9, 0xF4, 0x01, // mov cx, 500
			0xBB, 0x07, 0x00, // mov bx, 7
			0x89, 0xC8, // l: mov ax, cx
			0xF7, 0xE3, // mul bx
			0xF7, 0xF3, // div bx
			0xE2, 0xF8, // loop l
			0xF4, // hlt
		},
		ExpectedAX: 1,
	}
}

// 4. CALL/RET to a one-instruction function.
func callReturn() Benchmark {
	return Benchmark{
		Name:        "call_return",
		Description: "1000 near CALL/RET pairs",
		Program: []byte{
			0xB9, 0xE8, 0x03, // mov cx, 1000
			0x31, 0xC0, // xor ax, ax
			0xE8, 0x03, 0x00, // l: call f
			0xE2, 0xFB, // loop l
			0xF4, // hlt
			0x40, // f: inc ax
			0xC3, // ret
		},
		ExpectedAX: 1000,
	}
}

// 5. Conditional branch taken every other iteration. AX counts even CX.
func branchMix() Benchmark {
	return Benchmark{
		Name:        "branch_mix",
		Description: "alternating taken and fall-through JNZ",
		Program: []byte{
			0xB9, 0xE8, 0x03, // mov cx, 1000
			0x31, 0xC0, // xor ax, ax
			0xF6, 0xC1, 0x01, // l: test cl, 1
			0x75, 0x01, // jnz skip
			0x40,       // inc ax
			0xE2, 0xF8, // skip: loop l
			0xF4, // hlt
		},
		ExpectedAX: 500,
	}
}
