package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/trustkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   domain
//	-e string   environment
//	-s string   storage backend
//	-r string   directory the scaffold search starts from
//	-t int      service token validity, minutes
//	-u int      user token validity, minutes
//	-x string   checksum mismatch policy (ignore|reject)
//	-k string   key generation failure policy (swallow|propagate)
//
// Notes:
//   - os.Args is first filtered to the flags recognized here using
//     flagx.FilterArgs, so the operator CLI can carry its own flags.
//   - Duration flags are accepted as integers in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-e", "-s", "-r", "-t", "-u", "-x", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Domain, "d", config.Domain, "domain served by this key pair")
	fs.StringVar(&config.Environment, "e", config.Environment, "environment")
	fs.StringVar(&config.Storage, "s", config.Storage, "storage backend")
	fs.StringVar(&config.StartDir, "r", config.StartDir, "start directory for the scaffold search")

	serviceTokenTTL := fs.Int("t", int(config.ServiceTokenTTL.Minutes()), "service token validity (in minutes)")
	userTokenTTL := fs.Int("u", int(config.UserTokenTTL.Minutes()), "user token validity (in minutes)")

	checksumPolicy := fs.String("x", string(config.ChecksumMismatchPolicy), "checksum mismatch policy (ignore|reject)")
	keygenPolicy := fs.String("k", string(config.KeygenFailurePolicy), "key generation failure policy (swallow|propagate)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ServiceTokenTTL = time.Duration(*serviceTokenTTL) * time.Minute
	config.UserTokenTTL = time.Duration(*userTokenTTL) * time.Minute
	config.ChecksumMismatchPolicy = ChecksumMismatchPolicy(*checksumPolicy)
	config.KeygenFailurePolicy = KeygenFailurePolicy(*keygenPolicy)
}
