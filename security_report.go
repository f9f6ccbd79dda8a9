package credcore

// SecurityReport summarizes the engine's active security posture. Useful for
// startup logging and operator dashboards; it contains parameters only, never
// secret material.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}
	return SecurityReport{
		LockoutEnabled:      e.config.Lockout.Enabled,
		LockoutThreshold:    e.config.Lockout.Threshold,
		LockoutDuration:     e.config.Lockout.Duration,
		ThrottleActive:      e.limiter != nil,
		SuppressUnknownUser: e.config.Security.SuppressUnknownUser,
		SecretMinLength:     e.config.Secret.MinLength,
		UpgradeOnVerify:     e.config.Secret.UpgradeOnVerify,
		Argon2: SecretConfigReport{
			Memory:      e.config.Secret.Memory,
			Time:        e.config.Secret.Time,
			Parallelism: e.config.Secret.Parallelism,
			SaltLength:  e.config.Secret.SaltLength,
			KeyLength:   e.config.Secret.KeyLength,
		},
		AuditEnabled:   e.audit != nil,
		MetricsEnabled: e.metrics != nil && e.metrics.Enabled(),
	}
}
