//go:build !linux

package executor

import "os"

func applyLimits(int, Limits) error { return nil }

func maxRSSKB(*os.ProcessState) int { return 0 }
