// Package params assembles the template parameters passed to SQL files.
//
// Values come from three layers, later ones winning: the params mapping of
// the configuration scope, .env style parameter files (--params-file), and
// key=value pairs given on the command line (--param). Plain values render as
// quoted SQL literals; pairs given with --raw are inserted verbatim (after the
// quote strip applied to raw fragments) for identifiers such as table names.
//
// # Example Usage
//
//	p, err := params.Build(params.Sources{
//	    Config: cfg.Params,
//	    Files:  []string{"prod.env"},
//	    Pairs:  []string{"day=2024-03-01"},
//	    Raw:    []string{"table=staging.events"},
//	})
//	// SELECT * FROM %(table)s WHERE day = %(day)s
//	// -> SELECT * FROM staging.events WHERE day = '2024-03-01'
package params
