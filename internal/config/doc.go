// Package config provides configuration parsing for the leafwire CLI.
//
// The configuration is stored in leafwire.json in the working directory, or
// in the file named by --config. Every field is optional; command-line flags
// override the file and LEAFWIRE_COOKIE overrides the stored cookie.
//
// # Configuration File Structure
//
//	{
//	  "server": "https://latex.example.com",
//	  "cookie": "sharelatex.sid=s%3A...",
//	  "session": {
//	    "rpcTimeout": "3s",
//	    "shutdownGrace": "100ms",
//	    "writeTimeout": "10s",
//	    "handshakeTimeout": "10s",
//	    "maxMessageSize": 16777216,
//	    "ignoreEvents": ["connectionAccepted"]
//	  },
//	  "metrics": {
//	    "address": ":9090"
//	  },
//	  "export": {
//	    "dir": "export",
//	    "concurrency": 4,
//	    "s3": {
//	      "bucket": "my-bucket",
//	      "prefix": "thesis/",
//	      "region": "eu-west-1"
//	    }
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	scfg, err := cfg.SessionConfig()
package config
