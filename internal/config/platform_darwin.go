package config

const currentPlatform = PlatformMacOS
