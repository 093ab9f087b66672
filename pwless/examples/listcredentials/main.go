// Lists the credentials of a user against the live API.
//
//	PWLESS_SECRET=myapp:secret:... go run ./pwless/examples/listcredentials <user-id>
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/lgc202/pwless-go/pwless"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <user-id>", os.Args[0])
	}

	client, err := pwless.New()
	if err != nil {
		log.Fatal(err)
	}

	creds, err := client.ListCredentials(context.Background(), os.Args[1])
	if ae, ok := pwless.AsAPIError(err); ok {
		log.Fatalf("api error %d: %v", ae.StatusCode, ae.Body)
	}
	if err != nil {
		log.Fatal(err)
	}

	for _, c := range creds {
		fmt.Printf("%s\t%s\t%s\t%s\n", c.Descriptor.ID, c.Nickname, c.Device, c.LastUsedAt)
	}
}
