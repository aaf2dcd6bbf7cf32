package config

const currentPlatform = PlatformWindows
