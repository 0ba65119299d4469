/*
Package configure implements the per-node configuration pipeline that turns
a service role's output groups into rendered configuration files.

A configuration run receives a PipelineRequest: the service and role names,
the cluster id, an optional ZooKeeper-style myid, the name of the unpacked
package directory and an ordered list of output groups. Each group becomes
one file under <installRoot>/<package>/<outputDirectory>/<filename>.

# Architecture

	┌──────────────────── Pipeline.Configure ────────────────────┐
	│                                                             │
	│  node context (cache HOSTNAME/IP, OS fallback)              │
	│         │                                                   │
	│         ▼                                                   │
	│  for each OutputGroup:                                      │
	│   ┌───────────────── per-entry pass ──────────────────┐    │
	│   │ transform     input: ${name}   multiple: join     │    │
	│   │ configType    path: create     mvpath: move       │    │
	│   │               custom: expand to side list, drop   │    │
	│   │ retention     keep = required                     │    │
	│   │ coerce        bool/int -> string                  │    │
	│   │ dataDir       remember location                   │    │
	│   │ entry rules   trino, priority_networks, kyuubi    │    │
	│   └───────────────────────┬───────────────────────────┘    │
	│                           ▼                                 │
	│   myid file  ->  group rules  ->  merge  ->  render        │
	│                  (node.id, clusterId)       or empty file   │
	│         │                                                   │
	│         ▼                                                   │
	│  role post step (RangerAdmin: setup.sh, set_globals.sh)     │
	└─────────────────────────────────────────────────────────────┘

# Entry Pass

Entries are processed left to right. A dropped entry (required=false)
still runs every step, so a non-required path entry still creates its
directories. The pass builds a new slice rather than deleting in place,
which keeps the visiting order stable.

Custom entries never survive: their mappings are expanded into one
required entry per key and appended after all retained entries of the
group, together with anything a rule synthesized.

# Placeholders

Input entries substitute ${clusterId}, ${host}, ${ip}, ${user} and, when
the request carries one, ${myid}. Unknown placeholders are left verbatim.

# Rules

Role-specific overrides live in a Rules table instead of being inlined in
the pass. DefaultRules carries the built-in set; callers can build their
own with NewRules:

	rules := configure.NewRules(
		[]configure.EntryRule{{
			Name:  "rename",
			Names: []string{"old.key"},
			Apply: func(env *configure.RuleEnv, e *types.ConfigEntry) { e.Name = "new.key" },
		}},
		nil,
	)
	p := configure.New(configure.Config{Renderer: r, Rules: rules})

# Errors

Configure never returns an error or panics. Failures are logged with the
service and role fields and reported through types.Result. A failing role
post step reports Output "configure success" together with the error,
since every file was written before the step ran.
*/
package configure
