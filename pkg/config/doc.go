// Package config loads the agent configuration file and the YAML request
// and command files handed to the CLI.
//
// Every key of the configuration file is optional; missing keys keep the
// values from Default:
//
//	installRoot: /opt/datasophon
//	templateDir: /opt/datasophon/templates
//	keytabDir: /etc/security/keytab
//	masterURL: http://master:8081/ddh
//	scriptTimeout: 300s
//	stateDB: /var/lib/rolecfg/state.db
//	log:
//	  level: info
//	  json: false
//	start:
//	  statusAttempts: 10
//	  statusInterval: 3s
package config
