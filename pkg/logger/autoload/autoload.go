// Package autoload initializes the global logger from environment
// configuration. Import for side effect:
//
//	import _ "github.com/gtmquest/gtm-advisor/pkg/logger/autoload"
package autoload

import (
	configx "github.com/gtmquest/gtm-advisor/pkg/config"
	logx "github.com/gtmquest/gtm-advisor/pkg/logger"
)

func init() {
	cfg, err := configx.New[logx.Config]("LOG")
	if err != nil {
		logx.Init()
		return
	}
	logx.Init(*cfg)
}
