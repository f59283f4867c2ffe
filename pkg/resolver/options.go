package resolver

import "go.uber.org/zap"

// ShedOption for the tool shed resolver
type ShedOption func(*Shed)

// InstallOption for the installing side resolver
type InstallOption func(*Install)

// ShedLogger sets a logger
func ShedLogger(l *zap.Logger) ShedOption {
	return func(s *Shed) {
		if l != nil {
			s.l = l
		}
	}
}

// InstallLogger sets a logger
func InstallLogger(l *zap.Logger) InstallOption {
	return func(i *Install) {
		if l != nil {
			i.l = l
		}
	}
}

// Updating tells the resolver that an installed repository is being updated
func Updating(updating bool) InstallOption {
	return func(i *Install) {
		i.updating = updating
	}
}
