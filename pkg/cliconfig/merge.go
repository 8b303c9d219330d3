package cliconfig

// MergeConfig merges source config into target, updating sources tracking.
// Without SetFields, only non-zero values from source are applied. With
// SetFields, every listed key is applied, so a file can turn a default off.
func MergeConfig(target, source *CLIConfig, sourceType string) {
	if source == nil {
		return
	}
	if target.Sources == nil {
		target.Sources = make(map[string]string)
	}

	mergeString(target, source, sourceType, "ifish", &target.IFish, source.IFish)
	mergeString(target, source, sourceType, "ofish", &target.OFish, source.OFish)
	mergeString(target, source, sourceType, "imockup", &target.IMockup, source.IMockup)
	mergeString(target, source, sourceType, "omockup", &target.OMockup, source.OMockup)
	mergeString(target, source, sourceType, "lastfish", &target.LastFish, source.LastFish)
	mergeString(target, source, sourceType, "certFile", &target.CertFile, source.CertFile)
	mergeString(target, source, sourceType, "keyFile", &target.KeyFile, source.KeyFile)
	mergeString(target, source, sourceType, "logLevel", &target.LogLevel, source.LogLevel)
	mergeString(target, source, sourceType, "logFormat", &target.LogFormat, source.LogFormat)
	mergeString(target, source, sourceType, "logFile", &target.LogFile, source.LogFile)

	mergeInt(target, source, sourceType, "port", &target.Port, source.Port)
	mergeInt(target, source, sourceType, "httpsPort", &target.HTTPSPort, source.HTTPSPort)
	mergeInt(target, source, sourceType, "readTimeout", &target.ReadTimeout, source.ReadTimeout)
	mergeInt(target, source, sourceType, "writeTimeout", &target.WriteTimeout, source.WriteTimeout)

	// For booleans, checking `if source.X` cannot detect an explicit false.
	if isSet(source, "https", source.HTTPS) {
		target.HTTPS = source.HTTPS
		target.Sources["https"] = sourceType
	}
}

func mergeString(target, source *CLIConfig, sourceType, key string, dst *string, v string) {
	if isSet(source, key, v != "") {
		*dst = v
		target.Sources[key] = sourceType
	}
}

func mergeInt(target, source *CLIConfig, sourceType, key string, dst *int, v int) {
	if isSet(source, key, v != 0) {
		*dst = v
		target.Sources[key] = sourceType
	}
}

// isSet reports whether the field identified by its config key was
// explicitly set in source. Programmatic configs without SetFields fall
// back to nonZero.
func isSet(source *CLIConfig, key string, nonZero bool) bool {
	if source.SetFields != nil {
		return source.SetFields[key]
	}
	return nonZero
}
