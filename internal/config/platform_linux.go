package config

const currentPlatform = PlatformLinux
