// Command token mints a bearer token for an identity using the server's
// secret key and token validity, for local testing of the HTTP API.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/contestfund/internal/flagx"
	"github.com/dmitrijs2005/contestfund/internal/server/auth"
	"github.com/dmitrijs2005/contestfund/internal/server/config"
	"github.com/dmitrijs2005/contestfund/internal/server/models"
)

func main() {

	cfg := config.LoadConfig()

	var identity string
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&identity, "i", "", "identity to put into the token")
	if err := flagx.ParseKnown(fs, os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}

	if identity == "" {
		log.Fatal("usage: token -i <identity> [-s secret] [-t minutes] [-c config.json]")
	}

	token, err := auth.GenerateToken(models.Identity(identity), []byte(cfg.SecretKey), cfg.TokenValidityDuration)
	if err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Println(token)

}
