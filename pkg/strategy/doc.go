/*
Package strategy dispatches service role commands to role-specific handlers.

Every command names a service role. The Dispatcher looks the role up in its
registry and falls back to the DefaultStrategy when nothing is registered:

	RECEIVED
	   │
	   ├── RangerAdmin + kerberos ──► keytabs fetched (only the missing ones)
	   │
	   ▼
	CONFIGURED   (configure.Pipeline, when the command carries a request)
	   │
	   ▼
	STARTED      (status? ─ yes ─► done
	              no ─► start ─► poll status)
	   │
	   ▼
	DONE

Any failing stage short-circuits to a failed types.Result. The Ranger Admin
setup scripts run as a post step of the configuration pipeline, see
configure.RangerAdminSetup.

# Usage

	d := strategy.New(strategy.Config{
		Pipeline: pipeline,
		Starter:  strategy.NewShellStarter(shell.NewLocalExecutor(), "/opt/datasophon"),
		Keytabs:  kerberos.NewHTTPProvider(kerberos.DefaultKeytabDir, masterURL),
		Cache:    cache.Default(),
	})
	res := d.Dispatch(ctx, cmd)

Additional roles are plugged in with Register; a Func adapts a plain
function.
*/
package strategy
