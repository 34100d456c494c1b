/*
Copyright (c) Zoneforge, Inc. and affiliates.
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at
    http://www.apache.org/licenses/LICENSE-2.0
Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/zoneforge/nsec3data/dnsname"
	"github.com/zoneforge/nsec3data/nsec3"
)

func main() {
	parsable := flag.Bool("parsable", false, "Print only the hashed owner label")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Compute the NSEC3 hashed owner label of a domain name.\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [-parsable] <salt-hex|-> <algorithm> <iterations> <domain>\n", os.Args[0])
	}
	flag.Parse()
	if flag.NArg() != 4 {
		flag.Usage()
		os.Exit(2)
	}
	salt, err := nsec3.ParseSalt(flag.Arg(0))
	if err != nil {
		log.Fatalf("Bad salt: %v", err)
	}
	algorithm, err := nsec3.ParseHashAlgorithm(flag.Arg(1))
	if err != nil {
		log.Fatalf("Bad hash algorithm: %v", err)
	}
	iterations, err := strconv.ParseUint(flag.Arg(2), 10, 32)
	if err != nil {
		log.Fatalf("Bad iteration count: %v", err)
	}
	if iterations > nsec3.MaxIterations {
		log.Fatalf("Iteration count %d out of range", iterations)
	}
	name, err := dnsname.Parse(flag.Arg(3))
	if err != nil {
		log.Fatalf("Bad domain name: %v", err)
	}
	hash, err := nsec3.HashName(name, algorithm, uint32(iterations), salt)
	if err != nil {
		log.Fatalf("Hashing failed: %v", err)
	}
	if *parsable {
		fmt.Println(nsec3.HashedOwnerLabel(hash))
		return
	}
	fmt.Printf("%s (salt=%s, hash=%d, iterations=%d)\n",
		nsec3.HashedOwnerLabel(hash), nsec3.SaltString(salt), algorithm, iterations)
}
