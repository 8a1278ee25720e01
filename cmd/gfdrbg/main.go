// Copyright © 2021 Gridfinity, LLC. <admin@gridfinity.com>.
//
// All rights reserved.
//
// All use of this code is governed by the MIT license.
// The complete license is available in the LICENSE file.

// Command gfdrbg prints random bytes from a configured generator, lists
// the supported generator specs, or runs the known-answer self tests.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/johnsonjh/gfdrbg"
	"github.com/pkg/errors"
)

func main() {
	log.SetFlags(
		0,
	)
	log.SetPrefix(
		"gfdrbg: ",
	)
	err := run(
		os.Args[1:],
		os.Stdout,
	)
	if err != nil {
		log.Fatal(
			err,
		)
	}
}

func run(
	args []string,
	stdout io.Writer,
) error {
	fs := flag.NewFlagSet(
		"gfdrbg",
		flag.ContinueOnError,
	)
	var (
		spec     string
		n        int
		list     bool
		selfTest bool
		envFile  string
		stats    bool
	)
	fs.StringVar(
		&spec,
		"spec",
		"",
		"generator spec, e.g. CTR-AES-256 or HMAC-SHA-512/PR (default $GFDRBG_SPEC)",
	)
	fs.IntVar(
		&n,
		"n",
		32,
		"number of random bytes to print",
	)
	fs.BoolVar(
		&list,
		"list",
		false,
		"list supported generator specs",
	)
	fs.BoolVar(
		&selfTest,
		"selftest",
		false,
		"run known-answer self tests",
	)
	fs.StringVar(
		&envFile,
		"env",
		".env",
		"environment file to load if present",
	)
	fs.BoolVar(
		&stats,
		"stats",
		false,
		"print generator statistics after output",
	)
	err := fs.Parse(
		args,
	)
	if err != nil {
		return err
	}

	if selfTest {
		err = gfdrbg.SelfTest()
		if err != nil {
			return err
		}
		fmt.Fprintln(
			stdout,
			"self test passed",
		)
		return nil
	}

	cfg, err := gfdrbg.LoadConfig(
		envFile,
	)
	if err != nil {
		return err
	}
	if spec != "" {
		cfg.Spec = spec
	}

	if list {
		printSpecs(
			stdout,
			gfdrbg.NewFactory(),
		)
		return nil
	}

	if n < 0 {
		return errors.Errorf(
			"invalid byte count %d",
			n,
		)
	}
	factory, err := gfdrbg.NewFactoryFromConfig(
		cfg,
	)
	if err != nil {
		return err
	}
	rnd, err := factory.CreateFromConfig(
		cfg,
	)
	if err != nil {
		return err
	}
	buf := make(
		[]byte,
		n,
	)
	_, err = rnd.Read(
		buf,
	)
	if err != nil {
		return err
	}
	fmt.Fprintln(
		stdout,
		hex.EncodeToString(buf),
	)

	if stats {
		s := gfdrbg.DefaultStats.Copy()
		values := s.ToSlice()
		for i, name := range s.Header() {
			fmt.Fprintf(
				stdout,
				"%-18s %s\n",
				name,
				values[i],
			)
		}
	}
	return nil
}

func printSpecs(
	w io.Writer,
	f *gfdrbg.Factory,
) {
	for _, d := range f.Digests() {
		fmt.Fprintf(
			w,
			"HASH-%s\nHMAC-%s\n",
			d.Name,
			d.Name,
		)
	}
	for _, c := range f.Ciphers() {
		fmt.Fprintf(
			w,
			"CTR-%s\n",
			c.Name,
		)
		if c.BlockBits == 64 || c.BlockBits == 128 {
			fmt.Fprintf(
				w,
				"X931-%s\n",
				c.Name,
			)
		}
	}
}
