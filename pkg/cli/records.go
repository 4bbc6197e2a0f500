package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etm-murmansk/site/pkg/client"
)

var collections = map[string]bool{
	client.Projects:     true,
	client.Partners:     true,
	client.Certificates: true,
}

func collectionFlag(fs *flag.FlagSet) *string {
	return fs.String("resource", client.Projects, "Collection: projects, partners or certificates")
}

func checkCollection(name string) error {
	if !collections[name] {
		return fmt.Errorf("unknown resource %q (must be projects, partners or certificates)", name)
	}
	return nil
}

func printJSON(w io.Writer, data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

func newListCommand(e *env) *Command {
	cmd := &Command{
		Name:        "list",
		Description: "List records of a collection",
		Flags:       newFlagSet("list"),
	}
	api := addAPIFlags(cmd.Flags, e)
	resource := collectionFlag(cmd.Flags)
	limit := cmd.Flags.Int("limit", 0, "Page size (server default when 0)")
	offset := cmd.Flags.Int("offset", 0, "Records to skip")
	sortBy := cmd.Flags.String("sort", "", "Sort field, prefix with - for descending")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if err := checkCollection(*resource); err != nil {
			return err
		}
		c, err := api.client(e)
		if err != nil {
			return err
		}
		page, err := c.List(context.Background(), *resource, client.ListOptions{
			Limit:  *limit,
			Offset: *offset,
			Sort:   *sortBy,
		})
		if err != nil {
			return err
		}
		data, err := json.Marshal(page)
		if err != nil {
			return err
		}
		return printJSON(e.out, data)
	}
	return cmd
}

func newGetCommand(e *env) *Command {
	cmd := &Command{
		Name:        "get",
		Description: "Show one record",
		Flags:       newFlagSet("get"),
	}
	api := addAPIFlags(cmd.Flags, e)
	resource := collectionFlag(cmd.Flags)
	id := cmd.Flags.String("id", "", "Record id")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if err := checkCollection(*resource); err != nil {
			return err
		}
		c, err := api.client(e)
		if err != nil {
			return err
		}
		raw, err := c.Get(context.Background(), *resource, *id, nil)
		if err != nil {
			return err
		}
		return printJSON(e.out, raw)
	}
	return cmd
}

func newCreateCommand(e *env) *Command {
	cmd := &Command{
		Name:        "create",
		Description: "Create a record from a JSON file",
		Flags:       newFlagSet("create"),
	}
	api := addAPIFlags(cmd.Flags, e)
	resource := collectionFlag(cmd.Flags)
	file := cmd.Flags.String("file", "", "JSON file with the record fields (- for stdin)")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if err := checkCollection(*resource); err != nil {
			return err
		}
		record, err := readRecord(*file)
		if err != nil {
			return err
		}
		c, err := api.client(e)
		if err != nil {
			return err
		}
		newID, err := c.Create(context.Background(), *resource, record)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "Created %s %s\n", *resource, newID)
		return nil
	}
	return cmd
}

func newUpdateCommand(e *env) *Command {
	cmd := &Command{
		Name:        "update",
		Description: "Replace a record with the fields of a JSON file",
		Flags:       newFlagSet("update"),
	}
	api := addAPIFlags(cmd.Flags, e)
	resource := collectionFlag(cmd.Flags)
	id := cmd.Flags.String("id", "", "Record id")
	file := cmd.Flags.String("file", "", "JSON file with every record field (- for stdin)")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if err := checkCollection(*resource); err != nil {
			return err
		}
		record, err := readRecord(*file)
		if err != nil {
			return err
		}
		c, err := api.client(e)
		if err != nil {
			return err
		}
		if err := c.Update(context.Background(), *resource, *id, record); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "Updated %s %s\n", *resource, *id)
		return nil
	}
	return cmd
}

func newDeleteCommand(e *env) *Command {
	cmd := &Command{
		Name:        "delete",
		Description: "Delete a record",
		Flags:       newFlagSet("delete"),
	}
	api := addAPIFlags(cmd.Flags, e)
	resource := collectionFlag(cmd.Flags)
	id := cmd.Flags.String("id", "", "Record id")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if err := checkCollection(*resource); err != nil {
			return err
		}
		c, err := api.client(e)
		if err != nil {
			return err
		}
		if err := c.Delete(context.Background(), *resource, *id); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "Deleted %s %s\n", *resource, *id)
		return nil
	}
	return cmd
}

func readRecord(path string) (json.RawMessage, error) {
	if path == "" {
		return nil, fmt.Errorf("file is required")
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s is not valid JSON", path)
	}
	return json.RawMessage(data), nil
}
