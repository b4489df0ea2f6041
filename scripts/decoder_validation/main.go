// Cross-checks instruction lengths from the insts decoder against x86asm and
// measures decoder allocations.
package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"golang.org/x/arch/x86/x86asm"

	"github.com/sarchlab/x86sim/insts"
)

// samples is the number of random byte strings to decode.
const samples = 200000

func main() {
	decoder := insts.NewDecoder()
	rng := rand.New(rand.NewPCG(1, 2))

	var (
		code       [15]byte
		compared   int
		mismatches int
	)
	for i := 0; i < samples; i++ {
		for j := range code {
			code[j] = byte(rng.Uint32())
		}
		// 0F is POP CS here and a two-byte escape for x86asm.
		if code[0] == 0x0F {
			continue
		}

		ours, err := decoder.Decode(code[:])
		if err != nil {
			continue
		}
		ref, err := x86asm.Decode(code[:], 16)
		if err != nil {
			continue
		}

		compared++
		if ours.Len != ref.Len {
			mismatches++
			if mismatches <= 20 {
				fmt.Printf("% X: insts %d bytes (%s), x86asm %d bytes (%s)\n",
					code[:max(ours.Len, ref.Len)], ours.Len, ours.Mnemonic(), ref.Len, ref.Op)
			}
		}
	}

	runtime.GC()
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)

	start := time.Now()
	nop := []byte{0x8B, 0x87, 0x34, 0x12} // mov ax, [bx+0x1234]
	for i := 0; i < samples; i++ {
		_, _ = decoder.Decode(nop)
	}
	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	fmt.Printf("Decoder Validation Results:\n")
	fmt.Printf("===========================\n")
	fmt.Printf("Encodings compared: %d\n", compared)
	fmt.Printf("Length mismatches: %d\n", mismatches)
	fmt.Printf("Decodes per second: %.0f\n", float64(samples)/elapsed.Seconds())
	fmt.Printf("Allocations per decode: %.2f\n", float64(m2.Mallocs-m1.Mallocs)/samples)

	if mismatches > 0 {
		os.Exit(1)
	}
}
