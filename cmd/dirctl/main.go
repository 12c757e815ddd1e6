// dirctl is a command-line client for a partitioned user directory.
//
//	dirctl -zk zk1:2181,zk2:2181 -service users add alice "Alice" alice@example.com
//	dirctl -static "-9223372036854775808=http://localhost:8080,0=http://localhost:8081" get alice
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"userdir/pkg/cluster"
	"userdir/pkg/directory"
	"userdir/pkg/types"
)

func main() {
	zkServers := flag.String("zk", "", "comma-separated zookeeper servers")
	root := flag.String("root", "/userdir", "discovery tree root")
	service := flag.String("service", "users", "directory service name")
	static := flag.String("static", "", "static topology: comma-separated lowbound=addr pairs (used when -zk is empty)")
	timeout := flag.Duration("timeout", 30*time.Second, "operation timeout")
	flag.Parse()

	disc, err := buildDiscovery(*zkServers, *root, *static)
	if err != nil {
		fmt.Println("invalid topology flags:", err)
		os.Exit(1)
	}

	client := directory.NewHTTP(types.ServiceName(*service), disc)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, client, flag.Args()); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *directory.Client, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: dirctl [flags] add|get|update|del|scan ...")
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "add":
		if len(rest) < 1 {
			return fmt.Errorf("usage: add <id> [name] [email]")
		}
		u := types.User{ID: rest[0]}
		if len(rest) > 1 {
			u.Name = rest[1]
		}
		if len(rest) > 2 {
			u.Email = rest[2]
		}
		id, err := client.AddUser(ctx, u)
		if err != nil {
			return err
		}
		fmt.Println("added", id)

	case "get":
		if len(rest) != 1 {
			return fmt.Errorf("usage: get <id>")
		}
		u, err := client.GetUser(ctx, rest[0])
		if err != nil {
			return err
		}
		printUser(u)

	case "update":
		if len(rest) < 2 {
			return fmt.Errorf("usage: update <id> <name> [email]")
		}
		u := types.User{ID: rest[0], Name: rest[1]}
		if len(rest) > 2 {
			u.Email = rest[2]
		}
		ok, err := client.UpdateUser(ctx, u)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no such user %q", rest[0])
		}
		fmt.Println("updated", rest[0])

	case "del":
		if len(rest) != 1 {
			return fmt.Errorf("usage: del <id>")
		}
		ok, err := client.DeleteUser(ctx, rest[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no such user %q", rest[0])
		}
		fmt.Println("deleted", rest[0])

	case "scan":
		users, err := client.GetAllUsers(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			printUser(u)
		}
		fmt.Printf("%d users total\n", len(users))

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func buildDiscovery(zkServers, root, static string) (cluster.Discovery, error) {
	if zkServers != "" {
		return &cluster.ZKDiscovery{
			Servers: strings.Split(zkServers, ","),
			Root:    root,
		}, nil
	}
	if static == "" {
		return nil, fmt.Errorf("either -zk or -static is required")
	}

	var parts []cluster.PartitionDescriptor
	for _, pair := range strings.Split(static, ",") {
		low, addr, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("bad pair %q, want lowbound=addr", pair)
		}
		bound, err := strconv.ParseInt(low, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad low bound %q: %w", low, err)
		}
		parts = append(parts, cluster.PartitionDescriptor{
			LowBound: bound,
			Kind:     types.KindRange,
			Addr:     addr,
		})
	}
	return &cluster.StaticDiscovery{Partitions: parts}, nil
}

func printUser(u types.User) {
	fmt.Printf("%s\tname=%q\temail=%q\n", u.ID, u.Name, u.Email)
}
