package vault

import "errors"

var (
	errConfigFileNotFound        = errors.New("config file not found")
	errConfigFileRead            = errors.New("cannot read config file")
	errConfigInvalid             = errors.New("invalid config file")
	errVaultDirEmpty             = errors.New("vault_dir cannot be empty")
	errCacheCapacityNegative     = errors.New("cache_capacity cannot be negative")
	errScanWorkersNegative       = errors.New("scan_workers cannot be negative")
	errCheckpointIntervalInvalid = errors.New("checkpoint_interval must be a positive duration")
)
