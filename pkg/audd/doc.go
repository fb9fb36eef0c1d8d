// Package audd provides a client for the AudD music recognition API.
//
// # Quick Start
//
//	client := audd.NewClient(audd.Config{
//	    APIToken: "your-api-token",
//	})
//
//	f, _ := os.Open("sample.wav")
//	defer f.Close()
//
//	song, err := client.Recognize(ctx, f, "sample.wav")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if song == nil {
//	    fmt.Println("no match")
//	    return
//	}
//	fmt.Println(song.Artist, "-", song.Title)
//
// # Error Handling
//
// AudD reports API failures inside a successful HTTP response. They are
// returned as *Error, which carries the AudD error code:
//
//	var apiErr *audd.Error
//	if errors.As(err, &apiErr) {
//	    switch {
//	    case apiErr.BadAudio():
//	        // record again
//	    case apiErr.LimitReached():
//	        // wait or use another token
//	    }
//	}
//
// Non-success HTTP statuses are returned as *StatusError. Network failures
// are returned wrapped, unchanged.
//
// The client never retries.
package audd
