// Command opetool drives the OPE scheme from the shell: encrypt and
// decrypt exchange decimal strings, selftest runs random round-trips
// and prints the leakage proxy and timing summary.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/tuneinsight/lattigo/v4/utils"

	"BCLO-OPE/ope"
	"BCLO-OPE/prof"
)

func main() {
	mode := flag.String("mode", "selftest", "encrypt|decrypt|selftest")
	pw := flag.String("pw", "hello world", "passphrase")
	in := flag.String("in", "", "decimal plaintext (encrypt) or ciphertext (decrypt)")
	pbits := flag.Int("p", 32, "plaintext bits")
	cbits := flag.Int("c", 64, "ciphertext bits")
	n := flag.Int("n", 100, "selftest rounds")
	flag.Parse()

	switch *mode {
	case "encrypt":
		out, err := ope.EncryptString(*pw, *in, *pbits, *cbits)
		if err != nil {
			log.Fatalf("encrypt: %v", err)
		}
		fmt.Println(out)
	case "decrypt":
		out, err := ope.DecryptString(*pw, *in, *pbits, *cbits)
		if err != nil {
			log.Fatalf("decrypt: %v", err)
		}
		fmt.Println(out)
	case "selftest":
		o, err := ope.New([]byte(*pw), *pbits, *cbits)
		if err != nil {
			log.Fatalf("new: %v", err)
		}
		prng, err := utils.NewPRNG()
		if err != nil {
			log.Fatalf("prng: %v", err)
		}
		rep, err := o.SelfTest(*n, prng)
		if err != nil {
			log.Fatalf("selftest: %v", err)
		}
		fmt.Printf("ope: %d-bit plaintext, %d-bit ciphertext\n", *pbits, *cbits)
		fmt.Printf("rounds: %d, max guess error: %g\n", rep.Rounds, rep.MaxGuessError)
		for _, line := range prof.Summary(rep.Timings) {
			fmt.Println(line)
		}
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}
