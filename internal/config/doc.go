// Package config provides configuration parsing for jsxc projects.
//
// The configuration is stored in jsxc.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "compiler": {
//	    "generateMode": "dom",
//	    "hydratable": true,
//	    "delegatedEvents": ["pointerdown"]
//	  },
//	  "build": {
//	    "input": "src",
//	    "output": "dist",
//	    "workers": 4,
//	    "sourceMaps": true
//	  },
//	  "publish": {
//	    "bucket": "assets",
//	    "prefix": "modules/",
//	    "region": "eu-west-1"
//	  },
//	  "dev": {
//	    "port": 4300,
//	    "debounce": "150ms"
//	  }
//	}
//
// Options missing from "compiler" keep the values of
// compiler.DefaultOptions.
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Output:", cfg.OutputPath())
package config
