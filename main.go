// Command famigo is a cycle-accurate NES emulator.
package main

import (
	"fmt"
	"os"

	"famigo/ines"
)

var version = "devel"

func main() {
	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case runMode:
		runROM(cli.Run)
	case romInfosMode:
		showRomInfos(cli.RomInfos.RomPath)
	case versionMode:
		fmt.Println("famigo", version)
	}
}

func showRomInfos(path string) {
	rom, err := ines.Open(path)
	checkf(err, "failed to read %s", path)

	fmt.Println("file:      ", path)
	fmt.Println("mapper:    ", rom.Mapper())
	fmt.Printf("PRG ROM:    %d x 16KB\n", rom.PRGBanks())
	if rom.CHRBanks() == 0 {
		fmt.Println("CHR:        8KB RAM")
	} else {
		fmt.Printf("CHR ROM:    %d x 8KB\n", rom.CHRBanks())
	}
	fmt.Println("mirroring: ", rom.Mirroring())
	fmt.Println("battery:   ", rom.HasBattery())
	fmt.Println("trainer:   ", rom.HasTrainer())
	fmt.Println("NES 2.0:   ", rom.IsNES2())
}
