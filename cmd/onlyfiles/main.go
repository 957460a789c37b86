// Command onlyfiles manages flat file-system disk images from the command
// line. It talks to the engine only through the driver's public operations.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/kelseyhightower/envconfig"
	"github.com/urfave/cli/v2"

	"github.com/dargueta/onlyfiles/driver"
	fserrors "github.com/dargueta/onlyfiles/errors"
)

type harnessConfig struct {
	// Image is the disk image operated on when --image isn't given.
	Image string `envconfig:"IMAGE" default:"onlyfiles.img"`
}

func main() {
	var config harnessConfig
	if err := envconfig.Process("onlyfiles", &config); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}

	app := cli.App{
		Usage: "Manage flat file-system disk images",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "image",
				Usage: "path to the disk image",
				Value: config.Image,
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "format",
				Usage:  "Create or wipe an image",
				Action: formatImage,
			},
			{
				Name:      "create",
				Usage:     "Create a new empty file",
				ArgsUsage: "NAME",
				Action:    withMountedImage(createFile),
			},
			{
				Name:      "rm",
				Usage:     "Delete a file",
				ArgsUsage: "NAME",
				Action:    withMountedImage(deleteFile),
			},
			{
				Name:  "ls",
				Usage: "List the files in the image",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "emit name,size,blocks as CSV",
					},
				},
				Action: withMountedImage(listFiles),
			},
			{
				Name:      "write",
				Usage:     "Copy a host file into the image",
				ArgsUsage: "NAME HOST_FILE",
				Action:    withMountedImage(writeFile),
			},
			{
				Name:      "read",
				Usage:     "Copy a file out of the image to stdout",
				ArgsUsage: "NAME",
				Action:    withMountedImage(readFile),
			},
			{
				Name:   "stat",
				Usage:  "Show capacity and usage counters",
				Action: withMountedImage(statImage),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func formatImage(ctx *cli.Context) error {
	file, err := os.OpenFile(
		ctx.String("image"), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	return driver.NewDriverFromFile(file).Format()
}

// withMountedImage opens and mounts the image, runs `action`, and unmounts.
func withMountedImage(
	action func(ctx *cli.Context, drv *driver.Driver) error,
) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		file, err := os.OpenFile(ctx.String("image"), os.O_RDWR, 0)
		if err != nil {
			return err
		}
		defer file.Close()

		drv := driver.NewDriverFromFile(file)
		if err := drv.Mount(); err != nil {
			return err
		}
		defer drv.Unmount()

		return action(ctx, drv)
	}
}

func createFile(ctx *cli.Context, drv *driver.Driver) error {
	return drv.CreateFile(ctx.Args().Get(0))
}

func deleteFile(ctx *cli.Context, drv *driver.Driver) error {
	return drv.DeleteFile(ctx.Args().Get(0))
}

func listFiles(ctx *cli.Context, drv *driver.Driver) error {
	if ctx.Bool("csv") {
		files, err := drv.Files()
		if err != nil {
			return err
		}
		out, err := gocsv.MarshalString(&files)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}

	names, err := drv.ListFiles(driver.MaxFiles)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func writeFile(ctx *cli.Context, drv *driver.Driver) error {
	name := ctx.Args().Get(0)
	data, err := os.ReadFile(ctx.Args().Get(1))
	if err != nil {
		return err
	}

	// Overwriting an existing file is fine; anything else is not.
	if err := drv.CreateFile(name); err != nil && !errors.Is(err, fserrors.ErrExists) {
		return err
	}
	return drv.WriteFile(name, data)
}

func readFile(ctx *cli.Context, drv *driver.Driver) error {
	buffer := make([]byte, driver.MaxFileSize)
	count, err := drv.ReadFile(ctx.Args().Get(0), buffer)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(buffer[:count])
	return err
}

func statImage(ctx *cli.Context, drv *driver.Driver) error {
	stat := drv.FSStat()
	fmt.Printf("block size:    %d\n", stat.BlockSize)
	fmt.Printf("total blocks:  %d\n", stat.TotalBlocks)
	fmt.Printf("free blocks:   %d\n", stat.BlocksFree)
	fmt.Printf("files:         %d\n", stat.Files)
	fmt.Printf("files free:    %d\n", stat.FilesFree)
	return nil
}
