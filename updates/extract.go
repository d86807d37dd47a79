package updates

import (
	"jonnyzzz.com/otaprobe/jsondoc"
)

// parsePayload applies the size budget and parses text, logging why it was rejected
func (c *Client) parsePayload(text string) (jsondoc.Value, bool) {
	if len(text) > MaxPayloadSize {
		c.log.Error().Int("size", len(text)).Int("limit", MaxPayloadSize).Msg("could not parse JSON, input data is too big")
		return jsondoc.Value{}, false
	}

	doc, err := jsondoc.Parse(text, MaxPayloadSize)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to parse JSON")
		return jsondoc.Value{}, false
	}
	c.log.Debug().Int("size", len(text)).Int("memory", doc.MemoryUsage()).Msg("parsed JSON")

	return doc.Root(), true
}

// extractVersion reads the "name" field of an object payload
func (c *Client) extractVersion(text string) string {
	root, ok := c.parsePayload(text)
	if !ok {
		return ""
	}
	return root.Get("name").Text()
}

// extractArtifactPath reads the "path" field of the first object in an array payload
func (c *Client) extractArtifactPath(text string) string {
	root, ok := c.parsePayload(text)
	if !ok {
		return ""
	}

	c.log.Debug().Int("files", root.Len()).Msg("artifact list")

	path := root.At(0).Get("path")
	if !path.Exists() || path.Kind() != jsondoc.KindString {
		return ""
	}
	return "/" + c.identity.Account + "/" + c.identity.Repository + "/" + path.Text()
}
