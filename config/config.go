// Package config holds the machine configuration and its JSON form.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// BootAuto asks the machine to pick the boot drive (hard disk, then
// floppy, then ROM BASIC).
const BootAuto = 254

// BootROMBasic boots straight into ROM BASIC.
const BootROMBasic = 255

// MinRAMSize is the smallest conventional memory that holds the interrupt
// table, the BIOS data area and a boot sector at 0x7C00.
const MinRAMSize = 0x8000

// CPU model names accepted in CPUModel.
const (
	CPU8086 = "8086"
	CPU186  = "186"
	CPUV20  = "v20"
)

// SoundBlaster holds the Sound Blaster resources.
type SoundBlaster struct {
	// Enabled attaches the card.
	Enabled bool `json:"enabled"`
	// Port is the base I/O port. Default: 0x220.
	Port uint16 `json:"port"`
	// IRQ is the interrupt line. Default: 7.
	IRQ int `json:"irq"`
	// DMA is the 8-bit DMA channel. Default: 1.
	DMA int `json:"dma"`
}

// MachineConfig describes one emulated PC.
type MachineConfig struct {
	// RAMSize is the installed conventional memory in bytes. The video
	// window and ROM area are always present. Default: 1 MiB.
	RAMSize int `json:"ram_size"`

	// CPUModel selects 8086, 186 or V20 behaviour. Default: v20.
	CPUModel string `json:"cpu_model"`

	// IllegalOpcodeTrap raises interrupt 6 on undefined opcodes instead of
	// ignoring them. Default: true.
	IllegalOpcodeTrap bool `json:"illegal_opcode_trap"`

	// BIOSPath is the system BIOS image. Required.
	BIOSPath string `json:"bios"`
	// ROMBasicPath is the ROM BASIC image loaded at F600:0000 for small BIOSes.
	ROMBasicPath string `json:"rom_basic"`
	// VideoROMPath is the video BIOS loaded at C000:0000 for small BIOSes.
	VideoROMPath string `json:"video_rom"`
	// FontPath is the 8x16 character bitmap used to draw text modes. Required.
	FontPath string `json:"font"`

	// Drives holds image paths for A:, B:, C: and D:. Empty means no disk.
	Drives [4]string `json:"drives"`

	// BootDrive is the BIOS drive number to boot, BootAuto or BootROMBasic.
	BootDrive int `json:"boot_drive"`

	// DirectDisk services INT 13h/19h in the emulator instead of the BIOS.
	// Default: true.
	DirectDisk bool `json:"direct_disk"`

	// EnableAudio turns on sample generation. Default: true.
	EnableAudio bool `json:"enable_audio"`
	// SampleRate is the audio output rate in Hz, clamped to 4000-96000.
	SampleRate int `json:"sample_rate"`
	// LatencyMS is the audio buffer length in milliseconds, clamped to 10-1000.
	LatencyMS int `json:"latency_ms"`

	// Blaster configures the Sound Blaster.
	Blaster SoundBlaster `json:"blaster"`

	// SoundSourcePort is the parallel port of the Disney Sound Source.
	// Default: 0x378. Zero detaches it.
	SoundSourcePort uint16 `json:"sound_source_port"`

	// AdlibPort is the base port of the Adlib FM synthesizer. Default:
	// 0x388. Zero detaches it. An attached Sound Blaster mirrors it at its
	// own base+8.
	AdlibPort uint16 `json:"adlib_port"`

	// FrameDelayMS is the delay between rendered frames. Default: 20.
	FrameDelayMS int `json:"frame_delay_ms"`

	// Speed limits execution in instructions per second. 0 is unlimited.
	Speed int `json:"speed"`

	// BatchSize is the number of instruction slots per CPU task run.
	// Default: 10000.
	BatchSize int `json:"batch_size"`

	// SingleThreaded runs every task on the caller's goroutine. Default: true.
	SingleThreaded bool `json:"single_threaded"`
}

// Default returns the configuration of a stock V20 PC/XT clone.
func Default() *MachineConfig {
	return &MachineConfig{
		RAMSize:           0x100000,
		CPUModel:          CPUV20,
		IllegalOpcodeTrap: true,
		BootDrive:         BootAuto,
		DirectDisk:        true,
		EnableAudio:       true,
		SampleRate:        48000,
		LatencyMS:         100,
		Blaster: SoundBlaster{
			Enabled: true,
			Port:    0x220,
			IRQ:     7,
			DMA:     1,
		},
		SoundSourcePort: 0x378,
		AdlibPort:       0x388,
		FrameDelayMS:    20,
		Speed:           0,
		BatchSize:       10000,
		SingleThreaded:  true,
	}
}

// Load reads a MachineConfig from a JSON file. Fields absent from the file
// keep their default values.
func Load(path string) (*MachineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read machine config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse machine config: %w", err)
	}

	config.Clamp()

	return config, nil
}

// Save writes the configuration to a JSON file.
func (c *MachineConfig) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize machine config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write machine config file: %w", err)
	}

	return nil
}

// Clamp forces the audio parameters into their supported ranges.
func (c *MachineConfig) Clamp() {
	c.SampleRate = clamp(c.SampleRate, 4000, 96000)
	c.LatencyMS = clamp(c.LatencyMS, 10, 1000)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Validate checks the configuration for values the machine cannot use.
func (c *MachineConfig) Validate() error {
	if c.BIOSPath == "" {
		return fmt.Errorf("bios image path is required")
	}
	if c.FontPath == "" {
		return fmt.Errorf("font image path is required")
	}
	switch c.CPUModel {
	case CPU8086, CPU186, CPUV20:
	default:
		return fmt.Errorf("unknown cpu_model %q", c.CPUModel)
	}
	if c.RAMSize < MinRAMSize || c.RAMSize > 0x100000 {
		return fmt.Errorf("ram_size must be in [0x%X, 0x100000]", MinRAMSize)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0")
	}
	if c.BootDrive < 0 || c.BootDrive > BootROMBasic {
		return fmt.Errorf("boot_drive must be in [0, 255]")
	}
	if c.Blaster.Enabled && (c.Blaster.IRQ < 0 || c.Blaster.IRQ > 7) {
		return fmt.Errorf("blaster irq must be in [0, 7]")
	}
	if c.Blaster.Enabled && (c.Blaster.DMA < 0 || c.Blaster.DMA > 3) {
		return fmt.Errorf("blaster dma must be in [0, 3]")
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *MachineConfig) Clone() *MachineConfig {
	clone := *c
	return &clone
}
