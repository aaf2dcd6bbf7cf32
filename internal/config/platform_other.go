//go:build !linux && !darwin && !windows

package config

const currentPlatform Platform = ""
